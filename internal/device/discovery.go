package device

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

const (
	inputDir  = "/dev/input"
	sysfsDir  = "/sys/class/input"
	miceName  = "mice"
	mousePref = "mouse"
)

// Info identifies an input device node.
type Info struct {
	Path string
	Name string
}

// Filename is the base name of the device node, e.g. "event3" or "mouse0".
func (i Info) Filename() string {
	return filepath.Base(i.Path)
}

// Legacy reports whether the node speaks the PS/2 byte protocol.
func (i Info) Legacy() bool {
	name := i.Filename()
	return strings.HasPrefix(name, mousePref) || name == miceName
}

// Mice reports whether the node is the multiplexed /dev/input/mice.
func (i Info) Mice() bool {
	return i.Filename() == miceName
}

// List returns all evdev and legacy mouse nodes sorted by path.
func List() ([]Info, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}
	devices := make([]Info, 0, len(paths))
	for _, p := range paths {
		devices = append(devices, Info{Path: p.Path, Name: p.Name})
	}

	legacy, err := filepath.Glob(filepath.Join(inputDir, mousePref+"*"))
	if err != nil {
		return nil, err
	}
	for _, path := range legacy {
		devices = append(devices, Info{Path: path, Name: legacyName(path)})
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Path < devices[j].Path
	})
	return devices, nil
}

// Resolve turns a device query into a device node. A query starting with '/'
// is a path; anything else is matched against device names, exact match
// first, then the first name containing the query.
func Resolve(query string) (Info, error) {
	if query == "" {
		return Info{}, exitErrorf(ExitEmptyQuery, "device query is empty")
	}

	if strings.HasPrefix(query, "/") {
		if _, err := os.Stat(query); err != nil {
			return Info{}, exitErrorf(ExitOpenFailed, "cannot open device %s: %w", query, err)
		}
		return Info{Path: query, Name: nameOf(query)}, nil
	}

	devices, err := List()
	if err != nil {
		return Info{}, exitErrorf(ExitNotFound, "cannot list input devices: %w", err)
	}
	if info, ok := match(devices, query); ok {
		return info, nil
	}
	return Info{}, exitErrorf(ExitNotFound, "cannot find device: %s", query)
}

func match(devices []Info, query string) (Info, bool) {
	for _, d := range devices {
		if d.Name == query {
			return d, true
		}
	}
	for _, d := range devices {
		if strings.Contains(d.Name, query) {
			return d, true
		}
	}
	return Info{}, false
}

func nameOf(path string) string {
	info := Info{Path: path}
	if info.Legacy() {
		return legacyName(path)
	}
	dev, err := evdev.OpenWithFlags(path, os.O_RDONLY)
	if err != nil {
		return info.Filename()
	}
	defer dev.Close()
	if name, err := dev.Name(); err == nil && name != "" {
		return name
	}
	return info.Filename()
}

// legacyName reads the kernel name of a legacy mouse node from sysfs.
func legacyName(path string) string {
	base := filepath.Base(path)
	data, err := os.ReadFile(filepath.Join(sysfsDir, base, "device", "name"))
	if err != nil {
		return base
	}
	if name := strings.TrimSpace(string(data)); name != "" {
		return name
	}
	return base
}
