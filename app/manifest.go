package app

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/blueprint/core/blueprint"
)

// Manifest describes how a set of blueprints is mounted:
//
//	mounts:
//	  - blueprint: admin
//	    url_prefix: /admin
//	    cli_group: manage
//	  - blueprint: admin
//	    as: backoffice
//	    subdomain: office
type Manifest struct {
	Mounts []Mount `yaml:"mounts"`
}

// Mount is one registration of a blueprint. Unset fields keep the
// blueprint's own values; an explicitly empty url_prefix, subdomain or
// cli_group clears them.
type Mount struct {
	Blueprint   string         `yaml:"blueprint"`
	As          string         `yaml:"as"`
	URLPrefix   *string        `yaml:"url_prefix"`
	Subdomain   *string        `yaml:"subdomain"`
	URLDefaults map[string]any `yaml:"url_defaults"`
	CLIGroup    *string        `yaml:"cli_group"`
}

// Options converts the mount to registration options.
func (m Mount) Options() []blueprint.MountOption {
	var opts []blueprint.MountOption
	if m.As != "" {
		opts = append(opts, blueprint.MountAs(m.As))
	}
	if m.URLPrefix != nil {
		opts = append(opts, blueprint.MountPrefix(*m.URLPrefix))
	}
	if m.Subdomain != nil {
		opts = append(opts, blueprint.MountSubdomain(*m.Subdomain))
	}
	if len(m.URLDefaults) > 0 {
		opts = append(opts, blueprint.MountDefaults(m.URLDefaults))
	}
	if m.CLIGroup != nil {
		if *m.CLIGroup == "" {
			opts = append(opts, blueprint.MountWithoutCLIGroup())
		} else {
			opts = append(opts, blueprint.MountCLIGroup(*m.CLIGroup))
		}
	}
	return opts
}

// ParseManifest decodes a YAML manifest. Unknown fields are rejected.
func ParseManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return Manifest{}, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	for i, mount := range m.Mounts {
		if mount.Blueprint == "" {
			return Manifest{}, fmt.Errorf("%w: mount %d has no blueprint", ErrInvalidManifest, i)
		}
	}
	return m, nil
}

// RegisterManifest registers bps as described by the manifest read from r.
// Blueprints are looked up by name. Every mount is resolved before the
// first registration, so an unknown blueprint registers nothing.
func (a *App) RegisterManifest(r io.Reader, bps ...*blueprint.Blueprint) error {
	m, err := ParseManifest(r)
	if err != nil {
		return err
	}

	byName := make(map[string]*blueprint.Blueprint, len(bps))
	for _, bp := range bps {
		byName[bp.Name()] = bp
	}
	for _, mount := range m.Mounts {
		if _, ok := byName[mount.Blueprint]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownBlueprint, mount.Blueprint)
		}
	}

	for _, mount := range m.Mounts {
		if err := a.RegisterBlueprint(byName[mount.Blueprint], mount.Options()...); err != nil {
			return fmt.Errorf("mount %s: %w", mount.Blueprint, err)
		}
	}
	return nil
}
