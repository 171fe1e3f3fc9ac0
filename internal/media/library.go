package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/nerrad567/gray-logic-audio/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-audio/internal/sound"
)

const cleanupInterval = 10 * time.Minute

// Logger is the logging dependency.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Library resolves clip paths under a media root and caches the decoded
// metadata. It implements sound.Loader.
//
// Library is safe for concurrent use.
type Library struct {
	root   string
	exts   map[string]bool
	cache  *gocache.Cache
	logger Logger
}

// NewLibrary builds a library from the media section of the YAML.
// A CacheTTL of zero keeps entries until they are invalidated.
func NewLibrary(cfg config.MediaConfig, logger Logger) *Library {
	if logger == nil {
		logger = noopLogger{}
	}
	exts := make(map[string]bool, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		e = strings.ToLower(e)
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &Library{
		root:   cfg.Root,
		exts:   exts,
		cache:  gocache.New(ttl, cleanupInterval),
		logger: logger,
	}
}

// Root returns the media root directory.
func (l *Library) Root() string { return l.root }

// clean turns a request path into the cache key: slash separated and
// relative to the root.
func clean(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || filepath.IsAbs(p) {
		return "", ErrInvalidPath
	}
	key := path.Clean(filepath.ToSlash(p))
	if key == "." || key == ".." || strings.HasPrefix(key, "../") {
		return "", ErrInvalidPath
	}
	return key, nil
}

// Load returns the asset for a root-relative path such as "sfx/door.mp3".
func (l *Library) Load(p string) (*sound.Asset, error) {
	key, err := clean(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, p)
	}
	ext := strings.ToLower(path.Ext(key))
	if !l.exts[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, p)
	}

	if v, ok := l.cache.Get(key); ok {
		if a, ok := v.(*sound.Asset); ok {
			return a, nil
		}
	}

	f, err := os.Open(filepath.Join(l.root, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, p)
		}
		return nil, fmt.Errorf("opening %q: %w", p, err)
	}
	defer f.Close()

	var info Info
	switch ext {
	case ".mp3":
		info, err = probeMP3(f)
	case ".wav":
		info, err = probeWAV(f)
	default:
		err = ErrUnsupported
	}
	if err != nil {
		return nil, fmt.Errorf("probing %q: %w", p, err)
	}

	asset := &sound.Asset{
		Path:       key,
		Length:     info.Length(),
		Samples:    info.Frames,
		SampleRate: info.SampleRate,
	}
	l.cache.SetDefault(key, asset)
	l.logger.Debug("clip loaded", "path", key, "length", asset.Length)
	return asset, nil
}

// Invalidate drops one cached path.
func (l *Library) Invalidate(p string) {
	if key, err := clean(p); err == nil {
		l.cache.Delete(key)
	}
}

// Flush drops every cached asset.
func (l *Library) Flush() {
	l.cache.Flush()
}

// Cached returns the number of cached assets.
func (l *Library) Cached() int {
	return l.cache.ItemCount()
}

// Supported reports whether the file name has a configured extension.
func (l *Library) Supported(name string) bool {
	return l.exts[strings.ToLower(path.Ext(name))]
}

// List walks the root and returns every supported clip path.
func (l *Library) List() ([]string, error) {
	var out []string
	err := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !l.Supported(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing media: %w", err)
	}
	return out, nil
}
