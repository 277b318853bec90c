package world

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/samdwyer/tilequest/internal/telemetry"
)

// MapExt is the file extension of map files.
const MapExt = ".yaml"

// Parse decodes a YAML map and validates it.
func Parse(data []byte) (*TileMap, error) {
	var m TileMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse map: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Loader reads maps by name from a filesystem.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a loader over fsys. Map "town" is read from "town.yaml".
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Load reads and parses the named maps concurrently. Results keep the order
// of names. The first failure cancels the remaining reads.
func (l *Loader) Load(ctx context.Context, names ...string) ([]*TileMap, error) {
	tracer := telemetry.Tracer("world")
	ctx, span := tracer.Start(ctx, "map.load")
	defer span.End()
	span.SetAttributes(attribute.StringSlice("map.names", names))

	maps := make([]*TileMap, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			m, err := l.loadOne(ctx, name)
			if err != nil {
				return err
			}
			maps[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetAttributes(attribute.Bool("failed", true))
		return nil, err
	}
	return maps, nil
}

// LoadOne is Load for a single map.
func (l *Loader) LoadOne(ctx context.Context, name string) (*TileMap, error) {
	maps, err := l.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return maps[0], nil
}

func (l *Loader) loadOne(ctx context.Context, name string) (*TileMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file := path.Clean(name)
	if !strings.HasSuffix(file, MapExt) {
		file += MapExt
	}

	data, err := fs.ReadFile(l.fsys, file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMapNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read map %s: %w", name, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", name, err)
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(path.Base(file), MapExt)
	}
	return m, nil
}
