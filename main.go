package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/therootcompany/xz"

	"github.com/heinermann/BOLTextract/internal/boltarchive"
	"github.com/heinermann/BOLTextract/internal/extractcache"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := flag.NewFlagSet("boltextract", flag.ContinueOnError)
	output := flags.String("output", "", "output directory (default: <input_dir>/<input_stem>/)")
	algoFlag := flags.String("algo", "", "algorithm: cdi, dos, msdos, n64, gba, z64, win, windows, xbox")
	big := flags.Bool("big", false, "force big-endian integer fields")
	include := flags.String("include", "", "only extract paths matching this doublestar glob")
	exclude := flags.String("exclude", "", "skip paths matching this doublestar glob")
	cacheDir := flags.String("cache", "", "extraction cache directory (default: <output_dir>/.boltcache)")
	noCache := flags.Bool("no-cache", false, "disable the extraction cache entirely")
	verbose := flags.Bool("verbose", false, "enable debug-level logging")
	verify := flags.Bool("verify", false, "dry run: decode the tree and report it, write nothing")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: %s [flags] <input>\n", flags.Name())
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}
	if flags.NArg() != 1 {
		flags.Usage()
		return 1
	}
	input := flags.Arg(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var (
		algo boltarchive.Algorithm
		ok   bool
	)
	if *algoFlag != "" {
		algo, ok = boltarchive.ParseAlgorithm(*algoFlag)
	} else {
		algo, ok = boltarchive.ParseAlgorithm(filepath.Ext(input))
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "%s: could not resolve an algorithm for %q; pass --algo\n", flags.Name(), input)
		return 1
	}

	outDir := *output
	if outDir == "" {
		dir := filepath.Dir(input)
		stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		outDir = filepath.Join(dir, stem)
	}

	buf, err := loadInput(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", flags.Name(), err)
		return 1
	}

	reader, err := boltarchive.Open(buf, algo, *big, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", flags.Name(), err)
		return 1
	}

	var sink boltarchive.Sink
	if *verify {
		sink = &verifySink{out: os.Stdout}
	} else {
		sink = boltarchive.NewDiskWriter(outDir)

		if !*noCache {
			resolvedCacheDir := *cacheDir
			if resolvedCacheDir == "" {
				resolvedCacheDir = filepath.Join(outDir, ".boltcache")
			}
			cache, err := extractcache.Open(resolvedCacheDir)
			if err != nil {
				log.Warn("extraction cache unavailable, continuing without it", "err", err)
			} else {
				defer cache.Close()
				sink = &cachedSink{inner: sink, cache: cache, fingerprint: extractcache.Fingerprint(buf)}
			}
		}
	}

	if *include != "" || *exclude != "" {
		sink = filteredSink{inner: sink, include: *include, exclude: *exclude}
	}

	if err := reader.Extract(sink); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", flags.Name(), err)
		return 1
	}
	return 0
}

// loadInput reads path into memory, transparently inflating an xz-
// compressed host binary first. The container magic is searched within
// whatever bytes result, exactly as if they'd been given uncompressed.
func loadInput(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 6)
	n, _ := f.ReadAt(head, 0)
	if n == 6 && string(head) == "\xfd7zXZ\x00" {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		xr, err := xz.NewReader(f, xz.DefaultDictMax)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		return io.ReadAll(xr)
	}
	return os.ReadFile(path)
}

// filteredSink resolves --include/--exclude. Directory pruning happens
// only when a pattern's literal components can't possibly match what's
// under path (the file extension at any depth below is still unknown);
// a file's own inclusion is resolved once ext is known, just before the
// write.
type filteredSink struct {
	inner            boltarchive.Sink
	include, exclude string
}

func (s filteredSink) Dir(path string) error {
	if s.include != "" && !couldMatchBelow(s.include, path) {
		return nil
	}
	return s.inner.Dir(path)
}

func (s filteredSink) File(path, ext string, data []byte) error {
	full := strings.TrimPrefix(path+ext, "/")
	if s.include != "" {
		if ok, _ := doublestar.Match(s.include, full); !ok {
			return nil
		}
	}
	if s.exclude != "" {
		if ok, _ := doublestar.Match(s.exclude, full); ok {
			return nil
		}
	}
	return s.inner.File(path, ext, data)
}

// couldMatchBelow reports whether pattern could still match some path
// below dirPath once an extension is appended to one of dirPath's
// descendants. It's deliberately permissive: any doubt keeps the
// directory in the walk.
func couldMatchBelow(pattern, dirPath string) bool {
	prefix := strings.TrimPrefix(dirPath, "/")
	if prefix == "" {
		return true
	}
	if strings.ContainsAny(pattern, "*?[{") {
		return true // a wildcard component could still expand to match
	}
	return strings.HasPrefix(pattern, prefix)
}

// verifySink reports the tree --verify would extract without writing
// anything. Per-file decode faults are already logged by the reader
// itself; this sink only narrates the paths and sizes that would result.
type verifySink struct {
	out io.Writer
}

func (s *verifySink) Dir(path string) error {
	fmt.Fprintf(s.out, "%s/\n", path)
	return nil
}

func (s *verifySink) File(path, ext string, data []byte) error {
	fmt.Fprintf(s.out, "%s%s\t%d bytes\n", path, ext, len(data))
	return nil
}

// cachedSink skips writes for entries whose content exactly matches a
// previous run at the same path, recorded under the archive's content
// fingerprint.
type cachedSink struct {
	inner       boltarchive.Sink
	cache       *extractcache.Cache
	fingerprint uint64
}

func (s *cachedSink) Dir(path string) error {
	return s.inner.Dir(path)
}

func (s *cachedSink) File(path, ext string, data []byte) error {
	full := path + ext
	if s.cache.Seen(s.fingerprint, full, data) {
		return nil
	}
	if err := s.inner.File(path, ext, data); err != nil {
		return err
	}
	return s.cache.Record(s.fingerprint, full, data)
}
