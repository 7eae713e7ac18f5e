package hook

import "sync"

// MockBackend is an in-memory Backend used by engine tests. It records
// every Send/Write call instead of touching any OS API, the same way
// mockHotkeyBackend in hotkey_service_test.go stands in for the real
// golang.design/x/hotkey backend.
type MockBackend struct {
	mu       sync.Mutex
	handler  Handler
	Sent     []Chord
	Written  []string
	toggled  map[string]bool
	SendErr  error
	WriteErr error
	hotkeys  map[Chord]func()
}

// NewMockBackend returns a ready-to-use MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{
		toggled: make(map[string]bool),
		hotkeys: make(map[Chord]func()),
	}
}

func (m *MockBackend) Start(handler Handler) error {
	m.mu.Lock()
	m.handler = handler
	m.mu.Unlock()
	return nil
}

// Emit delivers evt to the registered handler, simulating a real key
// event arriving from the OS. Safe to call from a test goroutine.
func (m *MockBackend) Emit(evt Event) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h(evt)
	}
}

func (m *MockBackend) Send(chord Chord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Sent = append(m.Sent, chord)
	return nil
}

func (m *MockBackend) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Written = append(m.Written, text)
	return nil
}

func (m *MockBackend) IsToggled(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toggled[key]
}

// SetToggled lets a test seed the caps-lock-at-construction state.
func (m *MockBackend) SetToggled(key string, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggled[key] = on
}

func (m *MockBackend) AddHotkey(chord Chord, callback func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotkeys[chord] = callback
	return nil
}

func (m *MockBackend) RemoveHotkey(chord Chord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hotkeys, chord)
	return nil
}

// FireHotkey invokes the callback registered for chord, if any. Returns
// false if nothing is registered for it.
func (m *MockBackend) FireHotkey(chord Chord) bool {
	m.mu.Lock()
	cb := m.hotkeys[chord]
	m.mu.Unlock()
	if cb == nil {
		return false
	}
	cb()
	return true
}

// MockClipboard is an in-memory Clipboard used by emission tests.
type MockClipboard struct {
	mu       sync.Mutex
	content  string
	ReadErr  error
	WriteErr error
	// MismatchOnce makes the first Read() that follows a Write() return a
	// different value than that Write(), simulating a racing clipboard
	// owner between write and verify.
	MismatchOnce bool
	wrote        bool
}

func NewMockClipboard() *MockClipboard { return &MockClipboard{} }

func (c *MockClipboard) Read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ReadErr != nil {
		return "", c.ReadErr
	}
	wrote := c.wrote
	c.wrote = false
	if c.MismatchOnce && wrote {
		c.MismatchOnce = false
		return c.content + "-stale", nil
	}
	return c.content, nil
}

func (c *MockClipboard) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.content = text
	c.wrote = true
	return nil
}
