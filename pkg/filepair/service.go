// Package filepair derives the dump file names of each channel for one date.
package filepair

import (
	"fmt"
	"path/filepath"

	"github.com/gjwo/nilm-gjw-data/pkg/types"
)

type Resolver struct {
	templates map[types.Channel]types.FileTemplate
}

func NewResolver(templates map[types.Channel]types.FileTemplate) *Resolver {
	return &Resolver{templates: templates}
}

// FileName builds <prefix><date><suffix>.csv for the channel.
func (r *Resolver) FileName(date string, channel types.Channel) (string, error) {
	tpl, ok := r.templates[channel]
	if !ok {
		return "", fmt.Errorf("%w: %q", types.ErrMissingTemplate, channel)
	}
	return tpl.Prefix + date + tpl.Suffix + ".csv", nil
}

// Path joins the channel's file name onto dir. The file may not exist.
func (r *Resolver) Path(dir, date string, channel types.Channel) (string, error) {
	name, err := r.FileName(date, channel)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Pair returns the active and reactive dump paths for the date.
func (r *Resolver) Pair(dir, date string) (active string, reactive string, err error) {
	if active, err = r.Path(dir, date, types.ChannelActive); err != nil {
		return "", "", err
	}
	if reactive, err = r.Path(dir, date, types.ChannelReactive); err != nil {
		return "", "", err
	}
	return active, reactive, nil
}
