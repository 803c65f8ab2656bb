package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// ErrPathOutsideRoot is returned when a path resolves outside the scanned
// repository root, including through symlinks or ".." components.
var ErrPathOutsideRoot = errors.New("path escapes repository root")

// ErrFileExcluded is returned when a file exists but is filtered out by the
// scan policy (extension, exclude pattern or hidden).
var ErrFileExcluded = errors.New("file excluded by scan policy")

// ErrFileTooLarge is returned when a file exceeds the configured size cap.
var ErrFileTooLarge = errors.New("file exceeds maximum size")

// Config controls which files an audit is allowed to see.
type Config struct {
	Extensions  []string // allowed file extensions, without the dot
	Excludes    []string // gitignore-style exclude patterns
	MaxFileSize int64    // bytes; files above this are rejected
	MaxFiles    int      // cap on files collected for single-call analysis
}

// DefaultConfig mirrors the defaults written by --init-config.
func DefaultConfig() Config {
	return Config{
		Extensions: []string{
			"go", "rs", "py", "js", "jsx", "ts", "tsx",
			"java", "c", "h", "cpp", "hpp", "rb", "php", "cs", "swift", "kt",
		},
		Excludes:    []string{"target", "node_modules", "dist", "build", "vendor", ".git"},
		MaxFileSize: 1 << 20, // 1 MiB
		MaxFiles:    100,
	}
}

// Scanner enumerates auditable files under a canonical repository root and
// owns the path-safety check shared by every file-touching tool.
type Scanner struct {
	root    string
	cfg     Config
	matcher *gitignore.GitIgnore
}

// New canonicalizes root and compiles the exclude patterns.
func New(root string, cfg Config) (*Scanner, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving repository root: %w", err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving repository root: %w", err)
	}
	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("stat repository root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("repository root %s is not a directory", root)
	}

	var matcher *gitignore.GitIgnore
	if len(cfg.Excludes) > 0 {
		matcher = gitignore.CompileIgnoreLines(cfg.Excludes...)
	}

	return &Scanner{root: canonical, cfg: cfg, matcher: matcher}, nil
}

// Root returns the canonical repository root.
func (s *Scanner) Root() string {
	return s.root
}

// Config returns the active scan policy.
func (s *Scanner) Config() Config {
	return s.cfg
}

// Resolve maps a repo-relative path to an absolute path, rejecting anything
// that escapes the root. Symlinks are followed before the containment check
// so a link pointing outside the tree cannot be read through. Non-existent
// leaf paths are resolved against their nearest existing ancestor so that
// "not found" can still be reported for safe paths.
func (s *Scanner) Resolve(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, rel)
	}

	joined := filepath.Clean(filepath.Join(s.root, rel))
	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		// Leaf may not exist yet; canonicalize the deepest existing ancestor
		// and re-append the remainder before checking containment.
		resolved, err = resolveMissing(joined)
		if err != nil {
			return "", err
		}
	}

	if !within(s.root, resolved) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, rel)
	}
	return resolved, nil
}

func resolveMissing(path string) (string, error) {
	dir, base := filepath.Split(filepath.Clean(path))
	dir = filepath.Clean(dir)
	if dir == path {
		return path, nil
	}
	resolvedDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		resolvedDir, err = resolveMissing(dir)
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(resolvedDir, base), nil
}

func within(root, path string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// Allows reports whether the scan policy admits the given repo-relative
// file path. Size is checked separately by CheckFile.
func (s *Scanner) Allows(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return false
		}
	}
	if s.matcher != nil && s.matcher.MatchesPath(rel) {
		return false
	}
	ext := strings.TrimPrefix(filepath.Ext(rel), ".")
	if len(s.cfg.Extensions) == 0 {
		return true
	}
	for _, allowed := range s.cfg.Extensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}

// CheckFile enforces the full policy for a repo-relative file path:
// containment, exclusion and the size cap. Returns the absolute path.
func (s *Scanner) CheckFile(rel string) (string, error) {
	abs, err := s.Resolve(rel)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", rel)
	}
	if !s.Allows(rel) {
		return "", fmt.Errorf("%w: %s", ErrFileExcluded, rel)
	}
	if s.cfg.MaxFileSize > 0 && info.Size() > s.cfg.MaxFileSize {
		return "", fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, rel, info.Size())
	}
	return abs, nil
}

// Entry is one name in a directory listing. Directories carry a trailing
// slash in Name so the model can tell them apart at a glance.
type Entry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
}

// ListDir lists a directory under the root, applying the hidden-file and
// exclude policy. Entries are sorted by name, directories suffixed "/".
func (s *Scanner) ListDir(rel string) ([]Entry, error) {
	abs, err := s.Resolve(rel)
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		childRel := filepath.ToSlash(filepath.Join(rel, name))
		if s.matcher != nil && s.matcher.MatchesPath(childRel) {
			continue
		}
		if de.IsDir() {
			entries = append(entries, Entry{Name: name + "/", IsDir: true})
			continue
		}
		entries = append(entries, Entry{Name: name, IsDir: false})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// File is one auditable file found by a scan.
type File struct {
	Path string // repo-relative, slash-separated
	Size int64
}

// CollectFiles walks the tree and returns up to MaxFiles auditable files
// in deterministic (sorted-walk) order.
func (s *Scanner) CollectFiles() ([]File, error) {
	var files []File
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if s.matcher != nil && s.matcher.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.Allows(rel) {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if s.cfg.MaxFileSize > 0 && info.Size() > s.cfg.MaxFileSize {
			return nil
		}

		files = append(files, File{Path: rel, Size: info.Size()})
		if s.cfg.MaxFiles > 0 && len(files) >= s.cfg.MaxFiles {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
