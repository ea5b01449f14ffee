package paymenttoken

import (
	"strings"
	"sync"
)

// NameHook may override the display name computed for a type code. It
// receives the current candidate name and the raw type code.
type NameHook func(name, typ string) string

var knownNames = map[string]string{
	"mc":         "MasterCard",
	"amex":       "American Express",
	"disc":       "Discover",
	"jcb":        "JCB",
	"cartebleue": "CarteBleue",
	"paypal":     "PayPal",
	TypeECheck:   "eCheck",
}

// Namer translates type codes to display names. Hooks run in registration
// order, each one receiving the previous hook's result.
type Namer struct {
	mu    sync.RWMutex
	hooks []NameHook
}

func NewNamer() *Namer {
	return &Namer{}
}

// Register appends a hook.
func (n *Namer) Register(hook NameHook) {
	if hook == nil {
		return
	}
	n.mu.Lock()
	n.hooks = append(n.hooks, hook)
	n.mu.Unlock()
}

// Reset drops every registered hook.
func (n *Namer) Reset() {
	n.mu.Lock()
	n.hooks = nil
	n.mu.Unlock()
}

// Name returns the display name of typ, ie "mc" => "MasterCard". Unknown
// codes have dashes replaced with spaces and each word capitalised, so
// "some-brand" becomes "Some Brand".
func (n *Namer) Name(typ string) string {
	name, ok := knownNames[typ]
	if !ok {
		name = upperWords(strings.ReplaceAll(typ, "-", " "))
	}

	n.mu.RLock()
	hooks := n.hooks
	n.mu.RUnlock()

	for _, hook := range hooks {
		name = hook(name, typ)
	}
	return name
}

var defaultNamer = NewNamer()

// RegisterNameHook adds a hook to the process-wide namer used by TypeToName
// and PaymentToken.TypeFull.
func RegisterNameHook(hook NameHook) { defaultNamer.Register(hook) }

// TypeToName translates a type code with the process-wide namer.
func TypeToName(typ string) string { return defaultNamer.Name(typ) }

// upperWords upper-cases the first byte of every whitespace separated word
// when it is an ASCII lower-case letter. Every other byte, including invalid
// or multi-byte UTF-8, is copied unchanged.
func upperWords(s string) string {
	b := []byte(s)
	atWordStart := true
	for i, c := range b {
		switch {
		case isWordSeparator(c):
			atWordStart = true
			continue
		case atWordStart && 'a' <= c && c <= 'z':
			b[i] = c - ('a' - 'A')
		}
		atWordStart = false
	}
	return string(b)
}

func isWordSeparator(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '\v':
		return true
	}
	return false
}
