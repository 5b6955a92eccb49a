package registry

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AstromechZA/etcpwdparse"
	"gopkg.in/yaml.v3"
)

// PackageListCommand prints installed packages with their uids.
const PackageListCommand = "pm list packages -U"

// Config names the sources Load reads. Empty paths are skipped.
type Config struct {
	PackagesList string
	PasswdFile   string
	CatalogFile  string
}

// CommandRunner runs a shell command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, command string) (string, error)
}

// catalog is the on-disk display catalog.
type catalog struct {
	Apps []App `yaml:"apps"`
}

// Load builds a registry from every configured source. When the package
// list cannot be read and runner is non-nil, the package manager is asked
// instead. Sources that fail are skipped; their errors are joined into the
// returned error, and the registry is always usable.
func Load(ctx context.Context, cfg Config, runner CommandRunner) (*Registry, error) {
	r := New()
	var errs []error

	if err := r.loadPackages(ctx, cfg.PackagesList, runner); err != nil {
		errs = append(errs, err)
	}

	if cfg.CatalogFile != "" {
		if err := r.loadCatalogFile(cfg.CatalogFile); err != nil {
			errs = append(errs, err)
		}
	}

	if cfg.PasswdFile != "" {
		cache := etcpwdparse.NewEtcPasswdCache(true)
		if err := cache.LoadFromPath(cfg.PasswdFile); err != nil {
			errs = append(errs, fmt.Errorf("failed to load passwd %s: %w", cfg.PasswdFile, err))
		} else {
			r.UsePasswd(cache)
		}
	}

	return r, errors.Join(errs...)
}

func (r *Registry) loadPackages(ctx context.Context, path string, runner CommandRunner) error {
	var fileErr error
	if path != "" {
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()
			if _, err := r.LoadPackagesList(f); err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			return nil
		}
		fileErr = fmt.Errorf("failed to open package list: %w", err)
	}

	if runner == nil {
		return fileErr
	}

	out, err := runner.Run(ctx, PackageListCommand)
	if err != nil {
		return errors.Join(fileErr, fmt.Errorf("failed to list packages: %w", err))
	}
	if _, err := r.LoadPackageManagerOutput(strings.NewReader(out)); err != nil {
		return fmt.Errorf("failed to parse package manager output: %w", err)
	}
	return nil
}

func (r *Registry) loadCatalogFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	if err := r.LoadCatalog(f); err != nil {
		return fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return nil
}

// LoadPackagesList reads the packages.list format:
//
//	com.android.phone 1001 0 /data/user_de/0/com.android.phone platform:privapp 3002,3003
//
// Malformed lines are skipped. It returns how many packages were added.
func (r *Registry) LoadPackagesList(rd io.Reader) (int, error) {
	n := 0
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		uid, err := strconv.Atoi(fields[1])
		if err != nil || uid < 0 {
			continue
		}
		r.Add(App{ID: fields[0], UID: uid})
		n++
	}
	return n, sc.Err()
}

// LoadPackageManagerOutput reads "package:<name> uid:<uid>" lines as
// printed by PackageListCommand.
func (r *Registry) LoadPackageManagerOutput(rd io.Reader) (int, error) {
	n := 0
	sc := bufio.NewScanner(rd)
	for sc.Scan() {
		var (
			name string
			uid  = -1
		)
		for _, field := range strings.Fields(sc.Text()) {
			key, value, ok := strings.Cut(field, ":")
			if !ok {
				continue
			}
			switch key {
			case "package":
				name = value
			case "uid":
				// shared uids are printed as "uid:10057,10058"
				first, _, _ := strings.Cut(value, ",")
				if v, err := strconv.Atoi(first); err == nil {
					uid = v
				}
			}
		}
		if name == "" || uid < 0 {
			continue
		}
		r.Add(App{ID: name, UID: uid})
		n++
	}
	return n, sc.Err()
}

// LoadCatalog merges a YAML display catalog:
//
//	apps:
//	  - id: com.android.chrome
//	    label: Chrome
//	    icon: chrome.png
//
// Catalog entries without a uid only add display data; they do not make an
// unknown package resolvable by owner.
func (r *Registry) LoadCatalog(rd io.Reader) error {
	var c catalog
	if err := yaml.NewDecoder(rd).Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	for _, app := range c.Apps {
		if app.ID == "" {
			continue
		}
		if app.UID == 0 {
			app.UID = UnknownUID
			if known, ok := r.lookup(app.ID); ok {
				app.UID = known.UID
			}
		}
		r.Add(app)
	}
	return nil
}

func (r *Registry) lookup(id string) (App, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apps[id]
	return a, ok
}
