package spec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/hashicorp/go-version"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
	ConversionError ErrorCode = "ConversionError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// AllowFileRefs permits file refs when the root is not a local file.
	AllowFileRefs bool
	// Bundle rewrites external refs into components so every $ref is local.
	Bundle bool
	Logger *zap.Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
		Bundle:      true,
		Logger:      zap.NewNop(),
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithAllowFileRefs(allow bool) Option    { return func(s *Settings) { s.AllowFileRefs = allow } }
func WithBundle(bundle bool) Option          { return func(s *Settings) { s.Bundle = bundle } }

func WithLogger(l *zap.Logger) Option {
	return func(s *Settings) {
		if l != nil {
			s.Logger = l
		}
	}
}

// Source is a loaded document together with what the compiler needs besides
// the kin-openapi tree.
type Source struct {
	Doc      *openapi3.T
	Order    *OrderIndex
	Location string
	// Version is the declared openapi/swagger version of the input.
	Version string
}

// supportedOpenAPI is the range the compiler output is defined for.
var supportedOpenAPI = mustConstraint(">= 3.0.0, < 3.1.0")

func mustConstraint(c string) version.Constraints {
	cs, err := version.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// Load reads, validates and bundles an OpenAPI v3 document. Swagger v2.0
// input is converted to v3 via kin-openapi openapi2conv.
//
// input may be a filesystem path or an http/https URL. file:// URLs are blocked.
func Load(ctx context.Context, input string, opts ...Option) (*Source, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}

	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""
	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked by default", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}
		raw, err := fetchWithRetry(ctx, input, settings)
		if err != nil {
			return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
		}
		return load(ctx, raw, input, settings, func(l *openapi3.Loader) (*openapi3.T, error) {
			return l.LoadFromURI(u)
		}, false)
	}

	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return load(ctx, raw, abs, settings, func(l *openapi3.Loader) (*openapi3.T, error) {
		return l.LoadFromFile(abs)
	}, true)
}

// LoadData is Load for an in-memory document. External refs are resolved
// relative to the working directory.
func LoadData(ctx context.Context, raw []byte, opts ...Option) (*Source, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	return load(ctx, raw, "<memory>", settings, func(l *openapi3.Loader) (*openapi3.T, error) {
		return l.LoadFromData(raw)
	}, true)
}

func load(ctx context.Context, raw []byte, location string, settings Settings, read func(*openapi3.Loader) (*openapi3.T, error), rootIsFile bool) (*Source, error) {
	log := settings.Logger.With(zap.String("location", location))
	major, declared, err := detectSpecVersion(raw)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: err.Error(), Location: location, Cause: err}
	}

	src := &Source{Location: location, Version: declared.Original()}
	switch major {
	case 3:
		if !supportedOpenAPI.Check(declared) {
			log.Warn("openapi version outside the supported 3.0.x range", zap.String("version", declared.Original()))
		}
		loader := newLoader(settings, rootIsFile)
		doc, err := read(loader)
		if err != nil {
			return nil, mapValidateOrParseErr(err, location)
		}
		src.Doc = doc
		src.Order = NewOrderIndex(raw)
	case 2:
		doc, err := convertV2ToV3(raw)
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: location, Cause: err}
		}
		loader := newLoader(settings, rootIsFile)
		if err := loader.ResolveRefsIn(doc, nil); err != nil {
			log.Warn("failed to resolve refs after conversion", zap.Error(err))
		}
		src.Doc = doc
		src.Order = NewOrderIndex(raw).Remap([]string{"components", "schemas"}, []string{"definitions"})
	default:
		return nil, &SpecError{Code: ParseError, Message: "spec: unknown or unsupported OpenAPI/Swagger version", Location: location}
	}

	if err := src.Doc.Validate(ctx); err != nil {
		if !canProceedDespiteValidation(err) {
			return nil, mapValidateOrParseErr(err, location)
		}
		log.Warn("proceeding despite validation error", zap.Error(err))
	}
	if settings.Bundle {
		src.Doc.InternalizeRefs(ctx, nil)
	}
	log.Debug("document loaded", zap.String("version", src.Version), zap.Int("paths", len(src.Doc.Paths)))
	return src, nil
}

func newLoader(settings Settings, rootIsFile bool) *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	client := &http.Client{Timeout: settings.HTTPTimeout}
	allowFile := settings.AllowFileRefs || rootIsFile
	loader.ReadFromURIFunc = func(l *openapi3.Loader, uri *url.URL) ([]byte, error) {
		switch strings.ToLower(uri.Scheme) {
		case "", "file":
			if !allowFile {
				return nil, fmt.Errorf("blocked file ref: %s", uri.String())
			}
			path := uri.Path
			if path == "" {
				path = uri.Opaque
			}
			return os.ReadFile(path)
		case "http", "https":
			req, err := http.NewRequest(http.MethodGet, uri.String(), nil)
			if err != nil {
				return nil, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, uri.String())
			}
			return io.ReadAll(resp.Body)
		default:
			return nil, fmt.Errorf("unsupported ref scheme: %s", uri.Scheme)
		}
	}
	return loader
}

// detectSpecVersion returns the major version (3 for OpenAPI, 2 for Swagger)
// and the parsed declared version.
func detectSpecVersion(data []byte) (int, *version.Version, error) {
	var root struct {
		OpenAPI string `yaml:"openapi"`
		Swagger string `yaml:"swagger"`
	}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return 0, nil, fmt.Errorf("parse spec: %w", err)
	}
	declared := strings.TrimSpace(root.OpenAPI)
	if declared == "" {
		declared = strings.TrimSpace(root.Swagger)
	}
	v, err := version.NewVersion(declared)
	if err != nil {
		return 0, nil, fmt.Errorf("spec: missing or unknown version (expected 'openapi: 3.x' or 'swagger: 2.0')")
	}
	major := v.Segments()[0]
	switch {
	case root.OpenAPI != "" && major == 3:
		return 3, v, nil
	case root.OpenAPI == "" && major == 2:
		return 2, v, nil
	}
	return 0, v, fmt.Errorf("spec: unsupported version %q", declared)
}

func convertV2ToV3(data []byte) (*openapi3.T, error) {
	var v2 openapi2.T
	if err := yaml.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, retry, herr := readResponse(resp)
			if herr == nil {
				return body, nil
			}
			if !retry {
				return nil, herr
			}
			lastErr = herr
		}
		settings.Logger.Debug("retrying fetch", zap.String("url", rawURL), zap.Int("attempt", i+1), zap.Error(lastErr))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

// readResponse drains resp and reports whether a failure is worth retrying.
func readResponse(resp *http.Response) ([]byte, bool, error) {
	defer resp.Body.Close()
	if resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		return body, false, err
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, fmt.Errorf("transient http error %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, false, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}

func mapValidateOrParseErr(err error, location string) error {
	pointer := extractJSONPointer(err)
	code := ValidationError
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") || strings.Contains(lower, "unmarshal") {
		code = ParseError
	}
	return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	if me, ok := err.(openapi3.MultiError); ok && len(me) > 0 {
		return extractJSONPointer(me[0])
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	return jsonPtrRe.FindString(err.Error())
}

// canProceedDespiteValidation returns true for validation errors where the
// compiler still has enough to work with. Unresolved refs surface later as
// compile errors with a precise location, and unknown path item keys as
// unsupported methods.
func canProceedDespiteValidation(err error) bool {
	if err == nil {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref") || strings.Contains(s, "extra sibling fields")
}
