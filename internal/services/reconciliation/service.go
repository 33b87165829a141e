package reconciliation

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"supplier-payment-backend/internal/export"
	"supplier-payment-backend/internal/logger"
	"supplier-payment-backend/internal/models"
	"supplier-payment-backend/internal/repository"
	"supplier-payment-backend/internal/services/matching"
	"supplier-payment-backend/internal/services/normalize"
	"supplier-payment-backend/internal/services/registry"
	"supplier-payment-backend/internal/tabular"
)

var (
	ErrPassInFlight  = errors.New("a reconciliation pass is already running")
	ErrPassNotFound  = errors.New("reconciliation pass not found")
	ErrLedgerChanged = errors.New("ledger changed since the pass read it")
	ErrPassCommitted = errors.New("pass ledger already committed")
	ErrUnknownBucket = errors.New("unknown bucket")
)

type SupplierStore interface {
	ListSuppliers(ctx context.Context) ([]models.SupplierRecord, error)
	SaveSuppliers(ctx context.Context, records []models.SupplierRecord, audit []models.RegistryAuditLog) error
}

type LedgerStore interface {
	ListLedger(ctx context.Context) ([]models.LedgerEntry, error)
	ReplaceLedger(ctx context.Context, entries []models.LedgerEntry) error
	Stats(ctx context.Context, year int) (repository.LedgerStats, error)
}

type PassStore interface {
	CreatePass(ctx context.Context, pass *models.ReconciliationPass) error
	GetPass(ctx context.Context, id uuid.UUID) (*models.ReconciliationPass, error)
	ListPasses(ctx context.Context, limit int) ([]models.ReconciliationPass, error)
	MarkCommitted(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Settings struct {
	Threshold    decimal.Decimal
	Organization string
	Tolerance    decimal.Decimal
	Normalize    normalize.Options
	Encoding     string
}

// Service runs reconciliation passes against the stored registry and ledger.
// Every pass reads both stores fresh; nothing is cached between calls.
type Service struct {
	suppliers SupplierStore
	ledger    LedgerStore
	passes    PassStore
	settings  Settings
	now       func() time.Time

	// Held for the duration of a pass and of every registry or ledger write.
	mu sync.Mutex
}

func NewService(suppliers SupplierStore, ledger LedgerStore, passes PassStore, settings Settings) *Service {
	if settings.Threshold.IsZero() {
		settings.Threshold = DefaultThreshold
	}
	if settings.Tolerance.IsZero() {
		settings.Tolerance = normalize.DefaultTolerance
	}
	return &Service{
		suppliers: suppliers,
		ledger:    ledger,
		passes:    passes,
		settings:  settings,
		now:       time.Now,
	}
}

func (s *Service) Settings() Settings {
	return s.settings
}

// ReadTable decodes an uploaded CSV or XLSX file.
func (s *Service) ReadTable(filename string, r io.Reader) (tabular.Table, error) {
	return tabular.Read(filename, r, tabular.Options{Encoding: s.settings.Encoding})
}

type PassRequest struct {
	Filename  string
	Table     tabular.Table
	Threshold decimal.NullDecimal
}

// PassView is what callers see of a stored pass.
type PassView struct {
	Pass               *models.ReconciliationPass `json:"pass"`
	Shape              normalize.Shape            `json:"shape"`
	Metrics            Metrics                    `json:"metrics"`
	Report             []models.ReportLine        `json:"report"`
	RegistrySize       int                        `json:"registry_size"`
	RegistryDuplicates int                        `json:"registry_duplicates"`
}

func newPassView(pass *models.ReconciliationPass, res *Result) *PassView {
	return &PassView{
		Pass:               pass,
		Shape:              res.Shape,
		Metrics:            res.Metrics,
		Report:             res.Metrics.Report(),
		RegistrySize:       res.RegistrySize,
		RegistryDuplicates: res.RegistryDuplicates,
	}
}

// RunPass executes one reconciliation pass over an uploaded sales table and
// stores its result. The ledger is never written here; see CommitLedger.
func (s *Service) RunPass(ctx context.Context, req PassRequest) (*PassView, error) {
	if !s.mu.TryLock() {
		return nil, ErrPassInFlight
	}
	defer s.mu.Unlock()

	threshold := s.settings.Threshold
	if req.Threshold.Valid {
		threshold = req.Threshold.Decimal
	}
	log := logger.FromContext(ctx).With().
		Str("filename", req.Filename).
		Str("threshold", threshold.String()).
		Logger()
	log.Info().Msg("reconciliation pass started")
	started := s.now()

	suppliers, err := s.suppliers.ListSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("RunPass: list suppliers: %w", err)
	}
	prior, err := s.ledger.ListLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("RunPass: list ledger: %w", err)
	}

	res, err := Run(Input{
		Sales:        req.Table,
		Registry:     suppliers,
		Ledger:       prior,
		Threshold:    threshold,
		Organization: s.settings.Organization,
		Tolerance:    s.settings.Tolerance,
		Normalize:    s.settings.Normalize,
	})
	if err != nil {
		var serr *normalize.StructuralError
		if errors.As(err, &serr) {
			log.Warn().Strs("missing", serr.Missing).Msg("pass halted: " + serr.Error())
		}
		return nil, err
	}

	for _, inv := range res.Buckets.Invalid {
		log.Debug().Int("row", inv.RowNumber).Str("issue", inv.Issue).Msg("invalid row")
	}
	for _, exc := range res.Buckets.Exceptions {
		log.Debug().Str("company", exc.CompanyName).Str("issue", exc.Issue).Msg("exception")
	}

	outputs, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("RunPass: encode outputs: %w", err)
	}

	m := res.Metrics
	completed := s.now()
	pass := &models.ReconciliationPass{
		ID:                uuid.New(),
		Filename:          req.Filename,
		Threshold:         threshold,
		NonEmptyRows:      m.NonEmptyRows,
		EmptyRows:         m.EmptyRows,
		BankCount:         m.BankCount,
		MobileCount:       m.MobileCount,
		ExceptionCount:    m.ExceptionCount,
		InvalidCount:      m.InvalidCount,
		TotalPayable:      m.TotalPayable,
		PriorLedgerCount:  len(prior),
		PriorLedgerDigest: LedgerDigest(prior),
		Status:            models.PassStatusVerified,
		Outputs:           outputs,
		StartedAt:         started,
		CompletedAt:       &completed,
		CreatedAt:         completed,
	}
	if !m.Passed {
		pass.Status = models.PassStatusMismatch
	}
	if err := s.passes.CreatePass(ctx, pass); err != nil {
		return nil, fmt.Errorf("RunPass: store pass: %w", err)
	}

	event := log.Info()
	if !m.Passed {
		event = log.Warn()
	}
	event.Str("pass_id", pass.ID.String()).
		Int("bank", m.BankCount).
		Int("mobile", m.MobileCount).
		Int("exceptions", m.ExceptionCount).
		Int("invalid", m.InvalidCount).
		Str("total_payable", normalize.FormatAmount(m.TotalPayable)).
		Bool("verified", m.Passed).
		Msg("reconciliation pass completed")

	return newPassView(pass, res), nil
}

func (s *Service) loadPass(ctx context.Context, id uuid.UUID) (*models.ReconciliationPass, *Result, error) {
	pass, err := s.passes.GetPass(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrPassNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("GetPass: %w", err)
	}
	var res Result
	if err := json.Unmarshal(pass.Outputs, &res); err != nil {
		return nil, nil, fmt.Errorf("GetPass: decode outputs: %w", err)
	}
	return pass, &res, nil
}

func (s *Service) GetPass(ctx context.Context, id uuid.UUID) (*PassView, error) {
	pass, res, err := s.loadPass(ctx, id)
	if err != nil {
		return nil, err
	}
	return newPassView(pass, res), nil
}

const DefaultPassListLimit = 20

func (s *Service) ListPasses(ctx context.Context, limit int) ([]models.ReconciliationPass, error) {
	if limit <= 0 {
		limit = DefaultPassListLimit
	}
	passes, err := s.passes.ListPasses(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("ListPasses: %w", err)
	}
	return passes, nil
}

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

func render(name, format string, write func(w io.Writer) error) (*File, error) {
	if format == "" {
		format = tabular.FormatCSV
	}
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return nil, err
	}
	return &File{Name: name, ContentType: tabular.ContentType(format), Body: buf.Bytes()}, nil
}

// Download renders one output bucket of a stored pass.
func (s *Service) Download(ctx context.Context, id uuid.UUID, bucket, format string) (*File, error) {
	b, err := export.ParseBucket(bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBucket, bucket)
	}
	pass, res, err := s.loadPass(ctx, id)
	if err != nil {
		return nil, err
	}
	out := export.Outputs{
		Buckets:      res.Buckets,
		NewLedger:    res.NewLedger,
		MergedLedger: res.MergedLedger,
		Report:       res.Metrics.Report(),
	}
	prefix := "pass-" + pass.ID.String()[:8]
	return render(export.Filename(prefix, b, format), format, func(w io.Writer) error {
		return out.Write(w, b, format)
	})
}

// CommitLedger replaces the stored ledger with the merged ledger of a pass.
// It is refused when the ledger changed after the pass read it, so a batch
// can only be committed once and only on top of the history it was merged with.
func (s *Service) CommitLedger(ctx context.Context, id uuid.UUID) (*models.ReconciliationPass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pass, res, err := s.loadPass(ctx, id)
	if err != nil {
		return nil, err
	}
	if pass.CommittedAt != nil {
		return nil, ErrPassCommitted
	}
	current, err := s.ledger.ListLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("CommitLedger: list ledger: %w", err)
	}
	if len(current) != pass.PriorLedgerCount || LedgerDigest(current) != pass.PriorLedgerDigest {
		return nil, ErrLedgerChanged
	}

	if err := s.ledger.ReplaceLedger(ctx, res.MergedLedger); err != nil {
		return nil, fmt.Errorf("CommitLedger: %w", err)
	}
	at := s.now()
	if err := s.passes.MarkCommitted(ctx, id, at); err != nil {
		return nil, fmt.Errorf("CommitLedger: mark committed: %w", err)
	}
	pass.CommittedAt = &at

	log := logger.FromContext(ctx)
	log.Info().
		Str("pass_id", id.String()).
		Int("entries", len(res.MergedLedger)).
		Msg("ledger committed")
	return pass, nil
}

// ReplaceLedger stores an operator-supplied ledger file, upgraded from the
// legacy layout where needed and sorted chronologically.
func (s *Service) ReplaceLedger(ctx context.Context, table tabular.Table) (int, error) {
	entries, err := normalize.UpgradeLedger(table, s.settings.Normalize)
	if err != nil {
		return 0, err
	}
	sorted := MergeLedger(entries, nil)
	for i := range sorted {
		sorted[i].ID = uuid.New()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.ReplaceLedger(ctx, sorted); err != nil {
		return 0, fmt.Errorf("ReplaceLedger: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Info().Str("source", table.Name).Int("entries", len(sorted)).Msg("ledger replaced")
	return len(sorted), nil
}

func (s *Service) ExportLedger(ctx context.Context, format string) (*File, error) {
	entries, err := s.ledger.ListLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExportLedger: %w", err)
	}
	return render(export.Filename("", export.BucketLedger, format), format, func(w io.Writer) error {
		return tabular.Write(w, format, export.SheetName(export.BucketLedger), export.LedgerHeader, export.LedgerRows(entries))
	})
}

func (s *Service) LedgerStats(ctx context.Context, year int) (repository.LedgerStats, error) {
	stats, err := s.ledger.Stats(ctx, year)
	if err != nil {
		return stats, fmt.Errorf("LedgerStats: %w", err)
	}
	return stats, nil
}

type RegistryUpdate struct {
	Added       int `json:"added"`
	Updated     int `json:"updated"`
	Unchanged   int `json:"unchanged"`
	SkippedRows int `json:"skipped_rows"`
}

// UpdateRegistry merges an auxiliary supplier upload into the registry.
func (s *Service) UpdateRegistry(ctx context.Context, table tabular.Table, performedBy string) (*RegistryUpdate, error) {
	parsed, err := registry.ParseRows(table, s.settings.Normalize.HeaderScanRows)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.suppliers.ListSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("UpdateRegistry: %w", err)
	}
	merged := registry.Merge(existing, parsed.Records, table.Name, performedBy)
	if len(merged.Changed) > 0 {
		if err := s.suppliers.SaveSuppliers(ctx, merged.Changed, merged.Audit); err != nil {
			return nil, fmt.Errorf("UpdateRegistry: %w", err)
		}
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("source", table.Name).
		Int("added", merged.Added).
		Int("updated", merged.Updated).
		Int("unchanged", merged.Unchanged).
		Int("skipped", parsed.SkippedRows).
		Msg("registry updated")

	return &RegistryUpdate{
		Added:       merged.Added,
		Updated:     merged.Updated,
		Unchanged:   merged.Unchanged,
		SkippedRows: parsed.SkippedRows,
	}, nil
}

// ListSuppliers returns the registry sorted by key.
func (s *Service) ListSuppliers(ctx context.Context) ([]models.SupplierRecord, error) {
	records, err := s.suppliers.ListSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListSuppliers: %w", err)
	}
	return registry.NewIndex(records).Records(), nil
}

func (s *Service) ExportRegistry(ctx context.Context, format string) (*File, error) {
	records, err := s.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, registry.Row(r))
	}
	name := "registry." + format
	if format == "" {
		name = "registry." + tabular.FormatCSV
	}
	return render(name, format, func(w io.Writer) error {
		return tabular.Write(w, format, "REGISTRY", registry.Columns, rows)
	})
}

func (s *Service) SearchSuppliers(ctx context.Context, query string, limit int) ([]matching.Match, error) {
	records, err := s.suppliers.ListSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("SearchSuppliers: %w", err)
	}
	return matching.Search(records, query, limit), nil
}

// LedgerDigest fingerprints a ledger as read from the store.
func LedgerDigest(entries []models.LedgerEntry) string {
	h := sha256.New()
	for _, e := range entries {
		fmt.Fprintf(h, "%s|%d|%d|%d|%s|%s|%s|%s\n",
			e.ID, e.Seq, e.Year, e.Month, e.CompanyName, e.Amount.StringFixed(2), e.Mode, e.Reference)
	}
	return hex.EncodeToString(h.Sum(nil))
}
