// Package services defines the abstract Service capability the resolver
// core dispatches to, the error taxonomy every adapter must classify its
// failures into, and a small process-wide registry adapters self-register
// into: a sync.RWMutex-guarded map with a panic-on-duplicate Register, the
// same shape as a provider.Register("name", NewProvider) registry.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wardle/pura-go/compound"
)

// ErrNotFound is returned by nothing: a not-found answer is not an error. It
// is a nil error with a zero-length identifier slice. The sentinel exists
// only so adapters have something conventional to compare against
// internally before translating a provider's "not found" response into an
// empty, non-error return.
var ErrNotFound = errors.New("services: identifier not found")

// TransientError wraps a retriable failure: connection failures, timeouts,
// TLS handshake failures, provider 5xx or "server busy" payloads. It carries
// a gRPC status code so callers that already speak in that vocabulary (logs,
// metrics, an eventual RPC front-end) can classify it without a type switch.
type TransientError struct {
	Service string
	Code    codes.Code
	Err     error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("services: %s: transient error (%s): %v", e.Service, e.Code, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// GRPCStatus implements the interface status.FromError looks for, so a
// TransientError can be translated to a *status.Status by callers that want one.
func (e *TransientError) GRPCStatus() *status.Status {
	return status.New(e.Code, e.Error())
}

// IsTransient reports whether err (or something it wraps) is a TransientError.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}

// ClientError wraps a non-retriable failure: malformed requests, HTTP 4xx
// other than not-found, unsupported input kind, or an empty desired-kind
// intersection. Also used for configuration errors.
type ClientError struct {
	Service string
	Code    codes.Code
	Err     error
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("services: %s: client/configuration error (%s): %v", e.Service, e.Code, e.Err)
}

func (e *ClientError) Unwrap() error { return e.Err }

// GRPCStatus implements the interface status.FromError looks for, so a
// ClientError can be translated to a *status.Status by callers that want one.
func (e *ClientError) GRPCStatus() *status.Status {
	return status.New(e.Code, e.Error())
}

// IsClientError reports whether err (or something it wraps) is a ClientError.
func IsClientError(err error) bool {
	var c *ClientError
	return errors.As(err, &c)
}

// NewConfigError builds a ClientError, classified as codes.InvalidArgument,
// for an unsupported input kind or an empty desired-kind intersection.
func NewConfigError(service string, format string, args ...interface{}) error {
	return &ClientError{Service: service, Code: codes.InvalidArgument, Err: fmt.Errorf(format, args...)}
}

// NewHTTPClientError builds a ClientError for a non-success HTTP status that
// is not a server fault, classifying it by the closest matching gRPC code.
func NewHTTPClientError(service string, httpStatus int, err error) error {
	code := codes.FailedPrecondition
	switch httpStatus {
	case 400:
		code = codes.InvalidArgument
	case 401, 403:
		code = codes.PermissionDenied
	case 404:
		code = codes.NotFound
	case 405, 501:
		code = codes.Unimplemented
	}
	return &ClientError{Service: service, Code: code, Err: err}
}

// NewTransientError wraps err (connection failure, timeout, 5xx, ...) as
// retriable, classified as codes.Unavailable.
func NewTransientError(service string, err error) error {
	return &TransientError{Service: service, Code: codes.Unavailable, Err: err}
}

// NewRateLimitedError builds a TransientError classified as
// codes.ResourceExhausted, for a provider's HTTP 429 response.
func NewRateLimitedError(service string, err error) error {
	return &TransientError{Service: service, Code: codes.ResourceExhausted, Err: err}
}

// NewUnclassifiedError wraps an error an adapter returned without
// classifying it as either *TransientError or *ClientError. Such an error
// is non-retriable: a misbehaving adapter that forgets to classify its
// failures must not cause the caller to retry forever, so it is treated as
// a ClientError (codes.Unknown) rather than silently swallowed.
func NewUnclassifiedError(service string, err error) error {
	return &ClientError{Service: service, Code: codes.Unknown, Err: err}
}

// Service is the abstract resolution capability every adapter implements.
// ResolveCompound maps input to zero or more identifiers of the kinds in
// desiredKinds, using session for outbound transport.
//
// Contract:
//   - input.Kind must be supported by this service, else a *ClientError.
//   - desiredKinds must intersect this service's supported output kinds,
//     else a *ClientError.
//   - a clean "no match" response is a nil error and an empty slice, never
//     ErrNotFound or any other error value.
//   - retriable failures are *TransientError; everything else that is an
//     error is a *ClientError.
type Service interface {
	// Name identifies this service instance for logging and registration.
	Name() string
	// ResolveCompound performs one resolution attempt against the upstream.
	ResolveCompound(ctx context.Context, session *Session, input compound.Identifier, desiredKinds compound.KindSet) ([]compound.Identifier, error)
}

// Factory constructs a Service instance from free-form configuration,
// following the Sanix-Darker-prev provider.Register("name", NewProvider)
// convention.
type Factory func(config map[string]string) (Service, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register registers a named service factory. Panics on duplicate
// registration: two services sharing a name is always a programming error.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[name]; dup {
		panic("services: register called twice for " + name)
	}
	factories[name] = f
}

// New constructs a registered service by name.
func New(name string, config map[string]string) (Service, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("services: no service registered with name %q", name)
	}
	return f(config)
}

// Registered returns the sorted list of registered service names.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultNames is the default set of services, matching
// original_source/pura/resolvers.py's resolve_names default of
// [PubChem(), CIR()]. Defaults constructs it, and the CLI's resolve command
// falls back to it when --services is not given; resolver.ResolveNames does
// not fall back to it and consults only the services it is passed.
var DefaultNames = []string{"pubchem", "cir"}

// Defaults constructs the default service set, in declaration order.
func Defaults() ([]Service, error) {
	out := make([]Service, 0, len(DefaultNames))
	for _, name := range DefaultNames {
		svc, err := New(name, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, nil
}
