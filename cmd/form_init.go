package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/PippinModels/commercial-pricing-app/internal/cascade"
	"github.com/PippinModels/commercial-pricing-app/internal/config"
	"github.com/PippinModels/commercial-pricing-app/internal/form"
	"github.com/PippinModels/commercial-pricing-app/internal/pricing"
	"github.com/PippinModels/commercial-pricing-app/internal/rowstore"
)

// formEnv holds the opened document and the flow built on it.
type formEnv struct {
	Doc  *rowstore.Document
	Flow *form.Flow
}

// Close releases the document.
func (fe *formEnv) Close() {
	if fe.Doc != nil {
		_ = fe.Doc.Close()
	}
}

// initForm validates config, connects to the source document and builds the
// form flow. Callers should defer env.Close().
func initForm(ctx context.Context, c *config.Config) (*formEnv, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	flowCfg, der, casc, err := buildForm(c)
	if err != nil {
		return nil, err
	}

	doc, err := rowstore.Connect(ctx, c.Source)
	if err != nil {
		return nil, eris.Wrap(err, "connect source")
	}

	return &formEnv{
		Doc:  doc,
		Flow: form.NewFlow(doc, casc, der, flowCfg),
	}, nil
}

func buildForm(c *config.Config) (form.FlowConfig, *pricing.Deriver, *cascade.Cascade, error) {
	casc, err := cascade.FromDefinition(c.Form.Definition)
	if err != nil {
		return form.FlowConfig{}, nil, nil, err
	}

	rounder, err := pricing.NewRounder(c.Form.Rounding, c.Form.RoundingStep)
	if err != nil {
		return form.FlowConfig{}, nil, nil, err
	}

	loc, err := time.LoadLocation(c.Form.Timezone)
	if err != nil {
		return form.FlowConfig{}, nil, nil, eris.Wrapf(err, "load timezone %q", c.Form.Timezone)
	}

	return form.FlowConfig{
		SummaryWorksheet: c.Form.SummaryWorksheet,
		AuditWorksheet:   c.Form.AuditWorksheet,
		Location:         loc,
	}, pricing.NewDeriver(rounder), casc, nil
}
