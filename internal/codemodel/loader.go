package codemodel

import (
    "context"
    "errors"
    "fmt"
    "io"
    "log/slog"
    "net/http"
    "net/url"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/avast/retry-go"
    openapi2 "github.com/getkin/kin-openapi/openapi2"
    "github.com/getkin/kin-openapi/openapi2conv"
    "github.com/getkin/kin-openapi/openapi3"
    jsonyaml "github.com/invopop/yaml"
    "gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
    InputError      ErrorCode = "InputError"
    NetworkError    ErrorCode = "NetworkError"
    ParseError      ErrorCode = "ParseError"
    ConversionError ErrorCode = "ConversionError"
)

// LoadError is a structured error with the input location that failed.
type LoadError struct {
    Code     ErrorCode
    Message  string
    Location string // file path or URL
    Cause    error
}

func (e *LoadError) Error() string { return e.Message }
func (e *LoadError) Unwrap() error { return e.Cause }

// Format is the kind of document found at the input.
type Format int

const (
    FormatUnknown Format = iota
    FormatCodeModel
    FormatOpenAPI3
    FormatSwagger2
)

func (f Format) String() string {
    switch f {
    case FormatCodeModel:
        return "code-model"
    case FormatOpenAPI3:
        return "openapi-3"
    case FormatSwagger2:
        return "swagger-2"
    default:
        return "unknown"
    }
}

// Settings configures loader behavior.
type Settings struct {
    // HTTPTimeout bounds each HTTP request.
    HTTPTimeout time.Duration
    // MaxRetries for transient HTTP failures (>=500, 429, or network errors).
    MaxRetries int
    // BackoffBase is the base delay for exponential backoff.
    BackoffBase time.Duration
    // AllowFileRefs permits file:// external refs in OpenAPI inputs. Local
    // roots always allow them.
    AllowFileRefs bool
    Logger        *slog.Logger
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
    return Settings{
        HTTPTimeout: 10 * time.Second,
        MaxRetries:  3,
        BackoffBase: 200 * time.Millisecond,
    }
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option            { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option { return func(s *Settings) { s.BackoffBase = d } }
func WithAllowFileRefs(allow bool) Option    { return func(s *Settings) { s.AllowFileRefs = allow } }
func WithLogger(l *slog.Logger) Option       { return func(s *Settings) { s.Logger = l } }

// Load reads a code model from a filesystem path or an http/https URL.
// OpenAPI v3 and Swagger v2 inputs are accepted too and adapted into a code
// model; Swagger v2 is converted to v3 first. file:// URLs are blocked.
func Load(ctx context.Context, input string, opts ...Option) (*CodeModel, error) {
    if strings.TrimSpace(input) == "" {
        return nil, &LoadError{Code: InputError, Message: "codemodel: input is empty"}
    }

    settings := DefaultSettings()
    for _, opt := range opts {
        opt(&settings)
    }
    log := settings.Logger
    if log == nil {
        log = slog.New(slog.NewTextHandler(io.Discard, nil))
    }

    raw, location, rootIsFile, err := readInput(ctx, input, settings)
    if err != nil {
        return nil, err
    }

    format, derr := DetectFormat(raw)
    if derr != nil {
        return nil, &LoadError{Code: ParseError, Message: derr.Error(), Location: location, Cause: derr}
    }
    log.Debug("input detected", "location", location, "format", format.String(), "bytes", len(raw))

    switch format {
    case FormatCodeModel:
        m, err := Parse(raw)
        if err != nil {
            return nil, &LoadError{Code: ParseError, Message: fmt.Sprintf("%s: %v", location, err), Location: location, Cause: err}
        }
        return m, nil
    case FormatOpenAPI3:
        loader := newLoader(settings, rootIsFile)
        var doc *openapi3.T
        if rootIsFile {
            doc, err = loader.LoadFromFile(location)
        } else {
            // Already fetched with retries; refs resolve relative to the URL.
            u, _ := url.Parse(location)
            doc, err = loader.LoadFromDataWithPath(raw, u)
        }
        if err != nil {
            return nil, &LoadError{Code: ParseError, Message: fmt.Sprintf("%s: %v", location, err), Location: location, Cause: err}
        }
        return fromValidated(ctx, doc, location, log)
    case FormatSwagger2:
        if fixed, changed, _ := preprocessV2ForCompatibility(raw); changed {
            log.Debug("swagger input rewritten for conversion", "location", location)
            raw = fixed
        }
        doc, err := convertV2ToV3(raw)
        if err != nil {
            return nil, &LoadError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: location, Cause: err}
        }
        loader := newLoader(settings, rootIsFile)
        if err := loader.ResolveRefsIn(doc, nil); err != nil {
            log.Warn("unresolved refs after conversion", "location", location, "err", err)
        }
        return fromValidated(ctx, doc, location, log)
    default:
        return nil, &LoadError{Code: ParseError, Message: "codemodel: unknown input format", Location: location}
    }
}

// fromValidated validates permissively: unresolved refs are logged and the
// adapter carries on; other validation failures only warn since the view
// does not need a strictly valid document.
func fromValidated(ctx context.Context, doc *openapi3.T, location string, log *slog.Logger) (*CodeModel, error) {
    if err := doc.Validate(ctx); err != nil {
        log.Warn("openapi validation", "location", location, "err", err)
    }
    m, err := FromOpenAPI(ctx, doc)
    if err != nil {
        return nil, &LoadError{Code: ConversionError, Message: fmt.Sprintf("%s: %v", location, err), Location: location, Cause: err}
    }
    return m, nil
}

// readInput returns the raw bytes, the normalized location and whether the
// location is a local file.
func readInput(ctx context.Context, input string, settings Settings) ([]byte, string, bool, error) {
    u, uerr := url.Parse(input)
    isURL := uerr == nil && u.Scheme != "" && (u.Host != "" || strings.EqualFold(u.Scheme, "file"))

    if isURL {
        scheme := strings.ToLower(u.Scheme)
        if scheme == "file" {
            return nil, input, false, &LoadError{Code: InputError, Message: "codemodel: file:// URLs are blocked", Location: input}
        }
        if scheme != "http" && scheme != "https" {
            return nil, input, false, &LoadError{Code: InputError, Message: fmt.Sprintf("codemodel: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
        }
        raw, err := fetchWithRetry(ctx, input, settings)
        if err != nil {
            return nil, input, false, &LoadError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, err), Location: input, Cause: err}
        }
        return raw, input, false, nil
    }

    abs, err := filepath.Abs(input)
    if err != nil {
        return nil, input, true, &LoadError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
    }
    raw, err := os.ReadFile(abs)
    if err != nil {
        return nil, abs, true, &LoadError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
    }
    return raw, abs, true, nil
}

// DetectFormat classifies raw YAML/JSON input by its top-level keys.
func DetectFormat(data []byte) (Format, error) {
    var root map[string]any
    if err := yaml.Unmarshal(data, &root); err != nil {
        return FormatUnknown, fmt.Errorf("parse input: %w", err)
    }
    if v, ok := root["openapi"]; ok {
        if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
            return FormatOpenAPI3, nil
        }
    }
    if v, ok := root["swagger"]; ok {
        if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
            return FormatSwagger2, nil
        }
    }
    if _, ok := root["operationGroups"]; ok {
        return FormatCodeModel, nil
    }
    return FormatUnknown, errors.New("codemodel: unknown input (expected a code model with operationGroups, 'openapi: 3.x' or 'swagger: 2.0')")
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
            resp, err := client.Get(uri.String())
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

// convertV2ToV3 decodes through JSON so the schema references use
// kin-openapi's own unmarshalers.
func convertV2ToV3(data []byte) (*openapi3.T, error) {
    var v2 openapi2.T
    if err := jsonyaml.Unmarshal(data, &v2); err != nil {
        return nil, err
    }
    return openapi2conv.ToV3(&v2)
}

type httpStatusError struct {
    Status int
    Body   string
}

func (e *httpStatusError) Error() string {
    if e.Body == "" {
        return fmt.Sprintf("http %d", e.Status)
    }
    return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}

// isTransient reports whether a fetch failure is worth retrying.
func isTransient(err error) bool {
    if !retry.IsRecoverable(err) {
        return false
    }
    var he *httpStatusError
    if errors.As(err, &he) {
        return he.Status >= 500 || he.Status == http.StatusTooManyRequests
    }
    return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
    client := &http.Client{Timeout: settings.HTTPTimeout}
    backoff := settings.BackoffBase
    if backoff <= 0 {
        backoff = 200 * time.Millisecond
    }
    attempts := settings.MaxRetries
    if attempts <= 0 {
        attempts = 1
    }

    var body []byte
    err := retry.Do(
        func() error {
            req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
            if err != nil {
                return retry.Unrecoverable(err)
            }
            resp, err := client.Do(req)
            if err != nil {
                return err
            }
            defer resp.Body.Close()
            if resp.StatusCode >= 300 {
                snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
                return &httpStatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
            }
            body, err = io.ReadAll(resp.Body)
            return err
        },
        retry.Context(ctx),
        retry.Attempts(uint(attempts)),
        retry.Delay(backoff),
        retry.DelayType(retry.BackOffDelay),
        retry.LastErrorOnly(true),
        retry.RetryIf(isTransient),
    )
    if err != nil {
        return nil, err
    }
    return body, nil
}
