// Package store is the per-identity integration store: the durable owner of
// the last-fetched usage record per provider. Records live as one JSON file
// per (identity, provider) pair in a flat directory, so a corrupt or missing
// entry can never affect another provider's record. Mutations notify
// in-process subscribers directly; mutations from other processes sharing
// the same directory are observed through fsnotify.
package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/prismhq/prism/internal/core"
)

const (
	dataSuffix = ".data.json"
	keySuffix  = ".key"

	// selfEventWindow suppresses watcher echoes of this process's own
	// mutations; those were already notified synchronously.
	selfEventWindow = 2 * time.Second
)

// Snapshot is one identity's view of the store: a pointer per provider,
// nil meaning absent.
type Snapshot struct {
	Claude           *core.ClaudeUsage           `json:"claude"`
	Gemini           *core.GeminiUsage           `json:"gemini"`
	GeminiMonitoring *core.GeminiMonitoringUsage `json:"geminiMonitoring"`
	OpenAI           *core.OpenAIUsage           `json:"openai"`
}

// Connected lists the providers with a present record.
func (s Snapshot) Connected() []core.ProviderID {
	var ids []core.ProviderID
	if s.Claude != nil {
		ids = append(ids, core.ProviderClaude)
	}
	if s.Gemini != nil {
		ids = append(ids, core.ProviderGemini)
	}
	if s.GeminiMonitoring != nil {
		ids = append(ids, core.ProviderGeminiMonitoring)
	}
	if s.OpenAI != nil {
		ids = append(ids, core.ProviderOpenAI)
	}
	return ids
}

// HasRealData reports whether any usage-bearing provider is connected.
// Monitoring alone does not count, matching the dashboard's live/sample
// switch.
func (s Snapshot) HasRealData() bool {
	return s.Claude != nil || s.Gemini != nil || s.OpenAI != nil
}

type subscriber struct {
	identity string
	fn       func(core.ProviderID)
}

type Store struct {
	root    string
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	subs    map[int]subscriber
	nextSub int
	selfOps map[string]time.Time // filename -> time of our own mutation

	closeOnce sync.Once
	done      chan struct{}
}

// Open creates the root directory if needed and starts the cross-process
// watcher.
func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating root dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: creating watcher: %w", err)
	}
	if err := watcher.Add(root); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("store: watching %s: %w", root, err)
	}

	s := &Store{
		root:    root,
		watcher: watcher,
		subs:    map[int]subscriber{},
		selfOps: map[string]time.Time{},
		done:    make(chan struct{}),
	}
	go s.watchLoop()
	return s, nil
}

func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.watcher.Close()
	})
	return err
}

// Root returns the directory backing the store.
func (s *Store) Root() string { return s.root }

func encodeIdentity(identity string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(identity))
}

func dataFile(identity string, p core.ProviderID) string {
	return encodeIdentity(identity) + "." + p.Slug() + dataSuffix
}

func keyFile(identity string, p core.ProviderID) string {
	return encodeIdentity(identity) + "." + p.Slug() + keySuffix
}

// parseDataFile recovers (identity, provider) from a record file name.
func parseDataFile(name string) (string, core.ProviderID, bool) {
	if !strings.HasSuffix(name, dataSuffix) {
		return "", "", false
	}
	stem := strings.TrimSuffix(name, dataSuffix)
	i := strings.LastIndexByte(stem, '.')
	if i < 0 {
		return "", "", false
	}
	provider, ok := core.ParseProviderID(stem[i+1:])
	if !ok {
		return "", "", false
	}
	raw, err := base64.RawURLEncoding.DecodeString(stem[:i])
	if err != nil {
		return "", "", false
	}
	return string(raw), provider, true
}

// ReadAll reads every provider's record for the identity. An empty identity
// yields the all-absent snapshot; a missing or unparseable file yields
// absent for that provider only.
func (s *Store) ReadAll(identity string) Snapshot {
	var snap Snapshot
	if identity == "" {
		return snap
	}
	snap.Claude = readRecord[core.ClaudeUsage](s, identity, core.ProviderClaude)
	snap.Gemini = readRecord[core.GeminiUsage](s, identity, core.ProviderGemini)
	snap.GeminiMonitoring = readRecord[core.GeminiMonitoringUsage](s, identity, core.ProviderGeminiMonitoring)
	snap.OpenAI = readRecord[core.OpenAIUsage](s, identity, core.ProviderOpenAI)
	return snap
}

func readRecord[T any](s *Store, identity string, p core.ProviderID) *T {
	data, err := os.ReadFile(filepath.Join(s.root, dataFile(identity, p)))
	if err != nil {
		return nil
	}
	var record T
	if err := json.Unmarshal(data, &record); err != nil {
		log.Printf("store level=warn event=corrupt_record provider=%s err=%v", p, err)
		return nil
	}
	return &record
}

// Write persists the record under (identity, record.Provider()) atomically;
// last write wins. Subscribers for the identity are notified synchronously.
func (s *Store) Write(identity string, record core.UsageRecord) error {
	if identity == "" {
		return fmt.Errorf("store: identity is required")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("store: marshaling %s record: %w", record.Provider(), err)
	}
	name := dataFile(identity, record.Provider())
	if err := s.writeFile(name, data); err != nil {
		return err
	}
	s.notify(identity, record.Provider())
	return nil
}

// Remove deletes the record and its companion credential entry. Removing an
// absent record is a no-op; subscribers are notified either way.
func (s *Store) Remove(identity string, p core.ProviderID) error {
	if identity == "" {
		return fmt.Errorf("store: identity is required")
	}
	for _, name := range []string{dataFile(identity, p), keyFile(identity, p)} {
		s.markSelf(name)
		if err := os.Remove(filepath.Join(s.root, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("store: removing %s: %w", name, err)
		}
	}
	s.notify(identity, p)
	return nil
}

// Subscribe registers a change listener for one identity. The callback
// receives the provider that changed; it may fire more than once for a
// single mutation observed through both paths. The returned cancel is safe
// to call multiple times.
func (s *Store) Subscribe(identity string, fn func(core.ProviderID)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = subscriber{identity: identity, fn: fn}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(identity string, p core.ProviderID) {
	s.mu.Lock()
	fns := make([]func(core.ProviderID), 0, len(s.subs))
	for _, sub := range s.subs {
		if sub.identity == identity {
			fns = append(fns, sub.fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(p)
	}
}

func (s *Store) writeFile(name string, data []byte) error {
	s.markSelf(name)
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("store: creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("store: writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: closing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.root, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("store: replacing %s: %w", name, err)
	}
	return nil
}

func (s *Store) markSelf(name string) {
	s.mu.Lock()
	s.selfOps[name] = time.Now()
	s.mu.Unlock()
}

func (s *Store) isSelf(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.selfOps[name]
	if !ok {
		return false
	}
	if time.Since(at) > selfEventWindow {
		delete(s.selfOps, name)
		return false
	}
	return true
}

// watchLoop forwards external mutations of record files to subscribers.
func (s *Store) watchLoop() {
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			identity, provider, ok := parseDataFile(name)
			if !ok || s.isSelf(name) {
				continue
			}
			s.notify(identity, provider)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("store level=warn event=watcher_error err=%v", err)
		}
	}
}
