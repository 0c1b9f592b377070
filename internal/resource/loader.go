// Package resource decodes picture files off the render loop. Decoding runs
// on worker goroutines; completions are queued and delivered on the loop
// goroutine by Drain, so surfaces never touch GPU or canvas state from a
// worker.
package resource

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// ErrNoSource is reported for pictures without a file.
var ErrNoSource = errors.New("resource: picture has no file")

// ErrClosed is reported for loads requested after Close.
var ErrClosed = errors.New("resource: loader closed")

// Options configures a Loader.
type Options struct {
	// Root is prepended to relative paths read from the OS file system.
	Root string
	// FS, when set, replaces the OS file system. Paths are used as given.
	FS fs.FS
	// Workers bounds concurrent decodes. Zero means 4.
	Workers int
}

type completion struct {
	fn  func(image.Image, error)
	img image.Image
	err error
}

// Loader decodes images asynchronously and caches them by path.
type Loader struct {
	opts   Options
	sem    chan struct{}
	wg     sync.WaitGroup
	flight singleflight.Group

	mu       sync.Mutex
	done     []completion
	cache    map[string]image.Image
	closed   bool
	watcher  *Watcher
	onReload []func(path string)
}

// NewLoader returns a loader with the given options.
func NewLoader(opts Options) *Loader {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Loader{
		opts:  opts,
		sem:   make(chan struct{}, opts.Workers),
		cache: make(map[string]image.Image),
	}
}

// Load decodes path and queues fn for the next Drain. Cached images complete
// without decoding. Load never blocks.
func (l *Loader) Load(path string, fn func(image.Image, error)) {
	if path == "" {
		l.push(completion{fn: fn, err: ErrNoSource})
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		l.push(completion{fn: fn, err: ErrClosed})
		return
	}
	if img, ok := l.cache[path]; ok {
		l.done = append(l.done, completion{fn: fn, img: img})
		l.mu.Unlock()
		return
	}
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		img, err := l.decodeShared(path)

		l.mu.Lock()
		if err == nil {
			l.cache[path] = img
		}
		l.done = append(l.done, completion{fn: fn, img: img, err: err})
		l.mu.Unlock()
	}()
}

func (l *Loader) push(c completion) {
	l.mu.Lock()
	l.done = append(l.done, c)
	l.mu.Unlock()
}

// decodeShared decodes path once for all loads of it in flight together.
func (l *Loader) decodeShared(path string) (image.Image, error) {
	v, err, _ := l.flight.Do(path, func() (any, error) {
		l.sem <- struct{}{}
		defer func() { <-l.sem }()
		return l.decode(path)
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

func (l *Loader) decode(path string) (image.Image, error) {
	data, err := l.read(path)
	if err != nil {
		return nil, fmt.Errorf("resource: read %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("resource: decode %s: %w", path, err)
	}
	return img, nil
}

func (l *Loader) read(path string) ([]byte, error) {
	if l.opts.FS != nil {
		return fs.ReadFile(l.opts.FS, path)
	}
	if !filepath.IsAbs(path) && l.opts.Root != "" {
		path = filepath.Join(l.opts.Root, path)
	}
	return os.ReadFile(path)
}

// Drain runs queued completions on the calling goroutine and forwards file
// changes to reload hooks. It returns the number of completions run.
func (l *Loader) Drain() int {
	l.drainWatcher()

	l.mu.Lock()
	done := l.done
	l.done = nil
	l.mu.Unlock()

	for _, c := range done {
		if c.fn != nil {
			c.fn(c.img, c.err)
		}
	}
	return len(done)
}

// Invalidate drops the cached image for path.
func (l *Loader) Invalidate(path string) {
	l.mu.Lock()
	delete(l.cache, path)
	l.mu.Unlock()
}

// Wait blocks until every decode started so far has finished.
func (l *Loader) Wait() { l.wg.Wait() }

// --- Hot reload ---

// Watch starts watching dirs. Changed files are evicted from the cache and
// reported to OnReload hooks during Drain.
func (l *Loader) Watch(dirs ...string) error {
	w, err := NewWatcher(dirs...)
	if err != nil {
		return fmt.Errorf("resource: watch: %w", err)
	}
	l.mu.Lock()
	old := l.watcher
	l.watcher = w
	l.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// OnReload registers fn to run on the loop goroutine with the path of every
// changed picture file. Paths are relative to Root when they lie inside it.
func (l *Loader) OnReload(fn func(path string)) {
	l.mu.Lock()
	l.onReload = append(l.onReload, fn)
	l.mu.Unlock()
}

func (l *Loader) drainWatcher() {
	l.mu.Lock()
	w := l.watcher
	hooks := l.onReload
	l.mu.Unlock()
	if w == nil {
		return
	}
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return
			}
			rel := l.relative(name)
			l.Invalidate(rel)
			l.Invalidate(name)
			for _, fn := range hooks {
				fn(rel)
			}
		default:
			return
		}
	}
}

func (l *Loader) relative(name string) string {
	if l.opts.Root == "" {
		return name
	}
	rel, err := filepath.Rel(l.opts.Root, name)
	if err != nil {
		return name
	}
	return filepath.ToSlash(rel)
}

// Close stops the watcher and waits for in-flight decodes. Completions still
// queued are dropped.
func (l *Loader) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	var err error
	if w != nil {
		err = w.Close()
	}
	l.wg.Wait()

	l.mu.Lock()
	l.done = nil
	l.mu.Unlock()
	return err
}
