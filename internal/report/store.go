package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/KaramelBytes/chartloom-cli/internal/chart"
	"github.com/KaramelBytes/chartloom-cli/internal/utils"
	"github.com/google/uuid"
)

const reportFileName = "report.json"

// minImageBytes is the smallest capture payload accepted as a real image.
// Anything smaller is treated as a failed capture.
const minImageBytes = 64

// ErrCaptureFailed marks a rejected toggle: the capture produced no usable
// image and the selection was reverted.
var ErrCaptureFailed = errors.New("chart capture produced no usable image")

// Entry is one chart selection. Metadata is re-derived from the identity key,
// so a deselected entry carries none.
type Entry struct {
	ID          string            `json:"id"`
	Selected    bool              `json:"selected"`
	Image       []byte            `json:"image,omitempty"`
	Type        chart.Type        `json:"type,omitempty"`
	Columns     []string          `json:"columns,omitempty"`
	Aggregation chart.Aggregation `json:"aggregationType,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Describe renders the entry for report listings.
func (e *Entry) Describe() string {
	return chart.Describe(e.Type, e.Columns, e.Aggregation)
}

// Store maps chart identity keys to report selections. Toggles on different
// keys are independent; captures for the same key are serialized so a rapid
// double-toggle cannot interleave.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	locks   map[string]*sync.Mutex

	rootDir  string
	minBytes int
}

// NewStore constructs an empty in-memory store rooted at dir. Call Save to
// persist.
func NewStore(dir string) *Store {
	return &Store{
		entries:  make(map[string]*Entry),
		locks:    make(map[string]*sync.Mutex),
		rootDir:  dir,
		minBytes: minImageBytes,
	}
}

// SetMinImageBytes overrides the capture acceptance threshold. Non-positive
// values keep the default.
func (s *Store) SetMinImageBytes(n int) {
	if n > 0 {
		s.minBytes = n
	}
}

// LoadStore reads report.json from dir. A missing file yields an empty store
// rather than an error.
func LoadStore(dir string) (*Store, error) {
	s := NewStore(dir)
	b, err := os.ReadFile(filepath.Join(dir, reportFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read report: %w", err)
	}
	if err := json.Unmarshal(b, &s.entries); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return s, nil
}

// Save writes report.json using atomic write.
func (s *Store) Save() error {
	if s.rootDir == "" {
		return errors.New("report root directory not set")
	}
	if err := utils.EnsureDir(s.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	s.mu.Lock()
	data, err := utils.PrettyJSON(s.entries)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(s.rootDir, reportFileName), data)
}

// keyLock returns the capture mutex for one identity key.
func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Toggle records a selection decision for one chart identity.
//
// Selecting requires a usable image payload: an empty or undersized capture
// rejects the toggle, reverts the entry to unselected, and returns
// ErrCaptureFailed. Deselecting always succeeds and discards the prior image
// and metadata.
func (s *Store) Toggle(key string, selected bool, image []byte) error {
	id, err := chart.ParseKey(key)
	if err != nil {
		return fmt.Errorf("toggle report entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !selected {
		s.entries[key] = &Entry{
			ID:        s.entryID(key),
			Selected:  false,
			UpdatedAt: time.Now(),
		}
		return nil
	}
	if len(image) < s.minBytes {
		s.entries[key] = &Entry{
			ID:        s.entryID(key),
			Selected:  false,
			UpdatedAt: time.Now(),
		}
		return ErrCaptureFailed
	}
	s.entries[key] = &Entry{
		ID:          s.entryID(key),
		Selected:    true,
		Image:       image,
		Type:        id.Type,
		Columns:     id.Columns,
		Aggregation: id.Aggregation,
		UpdatedAt:   time.Now(),
	}
	return nil
}

// entryID keeps a stable id per key across toggles. Caller holds s.mu.
func (s *Store) entryID(key string) string {
	if e, ok := s.entries[key]; ok && e.ID != "" {
		return e.ID
	}
	return uuid.NewString()
}

// Select captures the chart's rendered surface from the registry and commits
// the selection. Captures for the same key run one at a time; last write
// wins.
func (s *Store) Select(ctx context.Context, key string, reg *Registry) error {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()

	image, err := reg.Capture(ctx, key)
	if err != nil {
		if tErr := s.Toggle(key, false, nil); tErr != nil {
			return tErr
		}
		return fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	return s.Toggle(key, true, image)
}

// Deselect clears the selection for a key.
func (s *Store) Deselect(key string) error {
	l := s.keyLock(key)
	l.Lock()
	defer l.Unlock()
	return s.Toggle(key, false, nil)
}

// Get returns a copy of the entry for a key.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Selected lists the keys of all currently selected entries in sorted order.
func (s *Store) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k, e := range s.entries {
		if e.Selected {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Len reports how many keys have a recorded decision, selected or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
