package form

import (
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/PippinModels/commercial-pricing-app/internal/cascade"
	"github.com/PippinModels/commercial-pricing-app/internal/model"
	"github.com/PippinModels/commercial-pricing-app/internal/pricing"
	"github.com/PippinModels/commercial-pricing-app/internal/rowstore"
)

// FlowConfig names the worksheets used by the flow.
type FlowConfig struct {
	SummaryWorksheet string
	AuditWorksheet   string
	// Location sets the calendar date written to the audit worksheet.
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

// Flow runs session transitions against a document.
type Flow struct {
	doc     *rowstore.Document
	cascade *cascade.Cascade
	deriver *pricing.Deriver
	cfg     FlowConfig
}

// NewFlow creates a Flow.
func NewFlow(doc *rowstore.Document, c *cascade.Cascade, d *pricing.Deriver, cfg FlowConfig) *Flow {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Flow{doc: doc, cascade: c, deriver: d, cfg: cfg}
}

// Cascade returns the flow's filter cascade.
func (f *Flow) Cascade() *cascade.Cascade {
	return f.cascade
}

// Rows reads and parses the summary worksheet. Rows that fail to parse are
// logged and skipped.
func (f *Flow) Rows(ctx context.Context) ([]model.PricingRow, error) {
	tbl, err := f.doc.Open(ctx, f.cfg.SummaryWorksheet)
	if err != nil {
		return nil, err
	}
	recs, err := tbl.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]model.PricingRow, 0, len(recs))
	for i, rec := range recs {
		row, err := model.ParsePricingRow(rec)
		if err != nil {
			zap.L().Warn("form: skipping unparseable pricing row",
				zap.String("worksheet", f.cfg.SummaryWorksheet),
				zap.Int("record", i+1),
				zap.Error(err),
			)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Options returns the values offered for the step after prior.
func (f *Flow) Options(ctx context.Context, prior []cascade.Choice) ([]string, error) {
	rows, err := f.Rows(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := f.cascade.Options(rows, prior)
	if err != nil {
		return nil, &InputError{Field: "choices", Reason: err.Error()}
	}
	return opts, nil
}

// Predict looks up the row for choices and offers its derived ranges. With no
// matching row the session moves to manual entry. Predict is accepted in any
// state and discards a previous selection.
func (f *Flow) Predict(ctx context.Context, s Session, choices []cascade.Choice) (Session, error) {
	key, err := f.cascade.Key(choices)
	if err != nil {
		return s, &InputError{Field: "choices", Reason: err.Error()}
	}

	rows, err := f.Rows(ctx)
	if err != nil {
		if rowstore.IsNotFound(err) {
			s.Notice = notice(LevelError, MsgNoSource)
		} else {
			s.Notice = notice(LevelError, err.Error())
		}
		return s, err
	}

	next := Session{
		ID:      s.ID,
		Choices: slices.Clone(choices),
		Key:     key,
	}

	row, ok := cascade.First(cascade.Match(rows, key))
	if ok {
		next.Ranges = f.deriver.Derive(row)
	}
	if len(next.Ranges) == 0 {
		next.State = StateManual
		next.Notice = notice(LevelWarning, MsgNoMatch)
	} else {
		next.State = StatePredicted
		next.Notice = notice(LevelInfo, MsgDisclaimer)
	}

	zap.L().Debug("form: predicted",
		zap.String("session", s.ID),
		zap.String("type", key.MappedType),
		zap.String("product", key.MappedProduct),
		zap.String("channel", key.Channel),
		zap.Int("ranges", len(next.Ranges)),
	)
	return next, nil
}

// Pick is the user's answer to the range prompt. Option is a range code, a
// range display or ManualOption; Value holds the amount for manual entry.
type Pick struct {
	Option string `json:"option"`
	Value  string `json:"value,omitempty"`
}

// Choose records the single active selection. A later choice replaces an
// earlier one.
func (f *Flow) Choose(s Session, p Pick) (Session, error) {
	switch s.State {
	case StatePredicted, StateManual, StateChosen:
	default:
		return s, &TransitionError{From: s.State, Action: "choose"}
	}

	var sel model.Selection
	if p.Option == ManualOption || p.Option == model.ManualCode {
		amount, err := model.ParseAmount(p.Value)
		if err != nil || !amount.Valid {
			return s, &InputError{Field: "value", Reason: "enter a number"}
		}
		if amount.Decimal.IsNegative() {
			return s, &InputError{Field: "value", Reason: "must not be negative"}
		}
		sel = f.deriver.Manual(amount.Decimal)
	} else {
		i := slices.IndexFunc(s.Ranges, func(r model.PriceRange) bool {
			return r.Code == p.Option || r.Display == p.Option
		})
		if i < 0 {
			return s, &InputError{Field: "option", Reason: "not offered: " + p.Option}
		}
		sel = model.SelectionFromRange(s.Ranges[i])
	}

	s.Selection = &sel
	s.State = StateChosen
	s.Notice = notice(LevelSuccess, MsgSelected+sel.Display)
	return s, nil
}

// Submit appends the selection to the audit worksheet unless an identical
// submission exists, then resets the session. On any failure the session
// stays chosen so the user can retry.
func (f *Flow) Submit(ctx context.Context, s Session) (Session, error) {
	if s.State != StateChosen || s.Selection == nil {
		return s, &TransitionError{From: s.State, Action: "submit"}
	}

	rec := model.AuditRecord{
		Key:       s.Key,
		Selection: *s.Selection,
		Date:      f.cfg.Now().In(f.cfg.Location),
	}

	tbl, err := f.doc.EnsureWorksheet(ctx, f.cfg.AuditWorksheet, model.AuditHeader())
	if err != nil {
		return failed(s, err)
	}
	existing, err := tbl.ReadAll(ctx)
	if err != nil {
		return failed(s, err)
	}

	key := rec.AuditKey()
	for _, r := range existing {
		if model.AuditKeyFromRecord(r) == key {
			s.Notice = notice(LevelWarning, MsgDuplicate)
			return s, &DuplicateSubmissionError{Key: key}
		}
	}

	if err := tbl.Append(ctx, rec.Row()); err != nil {
		return failed(s, err)
	}

	zap.L().Info("form: selection recorded",
		zap.String("session", s.ID),
		zap.String("worksheet", f.cfg.AuditWorksheet),
		zap.String("selection", rec.Selection.Code),
	)
	return Session{
		ID:        s.ID,
		State:     StateIdle,
		Notice:    notice(LevelSuccess, MsgRecorded),
		Submitted: &rec,
	}, nil
}

func failed(s Session, err error) (Session, error) {
	zap.L().Error("form: submit failed", zap.String("session", s.ID), zap.Error(err))
	s.State = StateChosen
	s.Notice = notice(LevelError, MsgFailed+err.Error())
	return s, err
}
