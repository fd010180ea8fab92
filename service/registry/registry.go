package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Transport names match the wire values used in CHAT_BACKENDS.
const (
	TransportLine = "tcp"  // newline-delimited JSON over a persistent socket
	TransportGRPC = "grpc" // unary calls plus one server-streaming join
)

// Backend describes one reachable chat service. Immutable once registered.
type Backend struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Transport string `json:"transport"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
}

func (b Backend) Addr() string {
	return fmt.Sprintf("%s:%d", b.Host, b.Port)
}

// Registry is the fixed backend set, built once at startup and shared
// read-only across every session.
type Registry struct {
	byID      map[string]Backend
	order     []string
	defaultID string
}

// New builds a registry from parsed backends. An empty set is a configuration
// error and fatal at startup. defaultID may be empty or unknown; Resolve then
// falls back to an arbitrary registered entry.
func New(backends []Backend, defaultID string) (*Registry, error) {
	if len(backends) == 0 {
		return nil, errors.New("backend registry is empty")
	}
	r := &Registry{byID: make(map[string]Backend, len(backends))}
	for _, b := range backends {
		if _, dup := r.byID[b.ID]; dup {
			return nil, errors.Errorf("duplicate backend id %q", b.ID)
		}
		r.byID[b.ID] = b
		r.order = append(r.order, b.ID)
	}
	if _, ok := r.byID[defaultID]; ok {
		r.defaultID = defaultID
	}
	return r, nil
}

// Parse reads the CHAT_BACKENDS format: comma-separated entries of
// "id:transport:host:port" or "id:host:port" (transport defaults to tcp).
// Malformed entries are skipped rather than failing the whole set.
func Parse(raw string) []Backend {
	var out []Backend
	for _, item := range strings.Split(raw, ",") {
		part := strings.TrimSpace(item)
		if part == "" {
			continue
		}

		pieces := strings.Split(part, ":")
		for i := range pieces {
			pieces[i] = strings.TrimSpace(pieces[i])
		}

		var id, transport, host, portStr string
		switch len(pieces) {
		case 4:
			id, transport, host, portStr = pieces[0], pieces[1], pieces[2], pieces[3]
		case 3:
			id, transport, host, portStr = pieces[0], TransportLine, pieces[1], pieces[2]
		default:
			continue
		}

		id = strings.ToLower(id)
		transport = strings.ToLower(transport)
		if transport == "" {
			transport = TransportLine
		}
		port, err := strconv.Atoi(portStr)
		if id == "" || host == "" || err != nil || port <= 0 {
			continue
		}

		out = append(out, Backend{
			ID:        id,
			Label:     displayLabel(id),
			Transport: transport,
			Host:      host,
			Port:      port,
		})
	}
	return out
}

// ErrUnknownBackend means a named backend is not registered and no default
// exists to fall back to; the connection is refused.
var ErrUnknownBackend = errors.New("unknown backend")

// Resolve picks the backend for a connection. An absent id falls back to the
// configured default, then to an arbitrary registered entry. A present but
// unknown id falls back to the default only; with no default configured the
// lookup fails.
func (r *Registry) Resolve(id string) (Backend, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		if r.defaultID != "" {
			return r.byID[r.defaultID], nil
		}
		return r.byID[r.order[0]], nil
	}
	if b, ok := r.byID[id]; ok {
		return b, nil
	}
	if r.defaultID != "" {
		return r.byID[r.defaultID], nil
	}
	return Backend{}, errors.Wrapf(ErrUnknownBackend, "%q", id)
}

// All returns the registered backends in registration order.
func (r *Registry) All() []Backend {
	out := make([]Backend, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

func displayLabel(id string) string {
	switch id {
	case "javarmi":
		return "Java RMI"
	case "grpc":
		return "gRPC"
	}
	if id == "" {
		return id
	}
	return strings.ToUpper(id[:1]) + id[1:]
}
