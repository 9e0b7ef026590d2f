// Copyright (c) 2026, R.I. Pienaar and the Choria Project contributors
//
// SPDX-License-Identifier: Apache-2.0

package fstab

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/choria-io/openstack-nfs/model"
)

// DefaultPath is the system persistent mount table
const DefaultPath = "/etc/fstab"

var ErrDuplicateMountpoint = errors.New("mountpoint already has an fstab entry")

// Entry is a single line of the persistent mount table
type Entry struct {
	Device     string `json:"device" yaml:"device"`
	Mountpoint string `json:"mountpoint" yaml:"mountpoint"`
	Type       string `json:"type" yaml:"type"`
	Options    string `json:"options" yaml:"options"`
	Dump       int    `json:"dump" yaml:"dump"`
	Pass       int    `json:"pass" yaml:"pass"`
}

// NewEntry creates an entry for spec using the fstab defaults for missing values
func NewEntry(spec model.MountSpec) Entry {
	e := Entry{
		Device:     spec.Device,
		Mountpoint: spec.Mountpoint,
		Type:       spec.FilesystemType,
		Options:    spec.Options,
	}

	if e.Options == "" {
		e.Options = "defaults"
	}

	return e
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s %s %s %d %d", escape(e.Device), escape(e.Mountpoint), e.Type, e.Options, e.Dump, e.Pass)
}

type line struct {
	raw   string
	entry *Entry
}

// Table is a persistent mount table file, lines that are not entries are preserved as is
type Table struct {
	path  string
	lines []*line
	log   model.Logger
	mu    sync.Mutex
}

// Load reads the table at path, a missing file is an empty table
func Load(path string, log model.Logger) (*Table, error) {
	if path == "" {
		path = DefaultPath
	}

	t := &Table{path: path, log: log}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Debug("No fstab found, starting with an empty table", "path", path)
		return t, nil
	case err != nil:
		return nil, err
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		raw := scanner.Text()
		entry, err := parseLine(raw)
		if err != nil {
			log.Debug("Preserving unparsable fstab line", "line", raw, "error", err)
		}
		t.lines = append(t.lines, &line{raw: raw, entry: entry})
	}

	err = scanner.Err()
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	return t, nil
}

// Path is the file the table is stored in
func (t *Table) Path() string {
	return t.path
}

// Entries returns all entries in file order
func (t *Table) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	var res []Entry
	for _, l := range t.lines {
		if l.entry != nil {
			res = append(res, *l.entry)
		}
	}

	return res
}

// EntryByMountpoint finds the entry for mountpoint
func (t *Table) EntryByMountpoint(mountpoint string) (*Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	mountpoint = cleanMountpoint(mountpoint)

	for _, l := range t.lines {
		if l.entry != nil && cleanMountpoint(l.entry.Mountpoint) == mountpoint {
			e := *l.entry
			return &e, true
		}
	}

	return nil, false
}

// Remove deletes every entry for mountpoint and reports if any were found
func (t *Table) Remove(mountpoint string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	mountpoint = cleanMountpoint(mountpoint)

	var kept []*line
	removed := false
	for _, l := range t.lines {
		if l.entry != nil && cleanMountpoint(l.entry.Mountpoint) == mountpoint {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	t.lines = kept

	return removed
}

// Add appends an entry, the mountpoint must not already be present
func (t *Table) Add(entry Entry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry.Device == "" || entry.Mountpoint == "" || entry.Type == "" {
		return fmt.Errorf("device, mountpoint and type are required")
	}

	if entry.Options == "" {
		entry.Options = "defaults"
	}

	mp := cleanMountpoint(entry.Mountpoint)
	for _, l := range t.lines {
		if l.entry != nil && cleanMountpoint(l.entry.Mountpoint) == mp {
			return fmt.Errorf("%w: %s", ErrDuplicateMountpoint, entry.Mountpoint)
		}
	}

	t.lines = append(t.lines, &line{raw: entry.String(), entry: &entry})

	return nil
}

// Bytes renders the table as it would be written to disk
func (t *Table) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.bytesUnlocked()
}

func (t *Table) bytesUnlocked() []byte {
	buf := bytes.NewBuffer([]byte{})
	for _, l := range t.lines {
		buf.WriteString(l.raw)
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// Save writes the table to a temporary file and renames it over the original
func (t *Table) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	dir := filepath.Dir(t.path)
	mode := os.FileMode(0644)
	stat, err := os.Stat(t.path)
	if err == nil {
		mode = stat.Mode().Perm()
	}

	tf, err := os.CreateTemp(dir, fmt.Sprintf("%s.*", filepath.Base(t.path)))
	if err != nil {
		return err
	}
	defer tf.Close()
	defer os.Remove(tf.Name())

	err = tf.Chmod(mode)
	if err != nil {
		return err
	}

	_, err = tf.Write(t.bytesUnlocked())
	if err != nil {
		return err
	}

	err = tf.Sync()
	if err != nil {
		return err
	}

	err = tf.Close()
	if err != nil {
		return fmt.Errorf("could not close temporary file: %w", err)
	}

	err = os.Rename(tf.Name(), t.path)
	if err != nil {
		return fmt.Errorf("could not rename temporary file: %w", err)
	}

	t.log.Debug("Saved fstab", "path", t.path)

	return nil
}

func parseLine(raw string) (*Entry, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil, nil
	}

	fields := strings.Fields(trimmed)
	if len(fields) < 3 {
		return nil, fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}

	e := &Entry{
		Device:     unescape(fields[0]),
		Mountpoint: unescape(fields[1]),
		Type:       fields[2],
		Options:    "defaults",
	}

	if len(fields) > 3 {
		e.Options = fields[3]
	}

	var err error
	if len(fields) > 4 {
		e.Dump, err = strconv.Atoi(fields[4])
		if err != nil {
			return nil, fmt.Errorf("invalid dump field %q", fields[4])
		}
	}

	if len(fields) > 5 {
		e.Pass, err = strconv.Atoi(fields[5])
		if err != nil {
			return nil, fmt.Errorf("invalid pass field %q", fields[5])
		}
	}

	return e, nil
}

func cleanMountpoint(mp string) string {
	if mp == "" || mp == "none" || mp == "swap" {
		return mp
	}

	return filepath.Clean(mp)
}

// spaces, tabs and backslashes are octal escaped in fstab fields
var (
	escaper   = strings.NewReplacer(`\`, `\134`, " ", `\040`, "\t", `\011`, "\n", `\012`)
	unescaper = strings.NewReplacer(`\134`, `\`, `\040`, " ", `\011`, "\t", `\012`, "\n")
)

func escape(s string) string {
	return escaper.Replace(s)
}

func unescape(s string) string {
	return unescaper.Replace(s)
}
