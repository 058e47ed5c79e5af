package contextbuilder

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/airbnblite/airbot/internal/document"
	"github.com/airbnblite/airbot/internal/model"
	"github.com/airbnblite/airbot/internal/settings"
	"github.com/airbnblite/airbot/internal/vectorstore"
	"github.com/airbnblite/airbot/pkg/logger"
	"github.com/airbnblite/airbot/pkg/metrics"
	"github.com/airbnblite/airbot/pkg/tracing"
)

const (
	noInsuranceText      = "Insurance Information:\nThe guest has no travel insurance for this booking and no eligible plan is available."
	documentUnavailable  = "The policy document could not be loaded. Answer only from the plan benefits above."
	noDocumentForPlan    = "No policy document is available for this plan."
	relevantSectionsHead = "Policy Document (relevant sections):"
	fullTextHead         = "Policy Document (full text):"
	truncatedMarker      = "\n[document truncated]"
)

// Ingester makes sure a policy document is present in the vector store.
type Ingester interface {
	EnsureEmbedded(ctx context.Context, url string) error
}

// Searcher returns the policy chunks closest to a query.
type Searcher interface {
	Search(ctx context.Context, query, url string, limit int) []vectorstore.Result
}

// InsuranceInput is everything the insurance block depends on.
type InsuranceInput struct {
	Query     string
	Purchased *model.InsurancePlan
	Eligible  *model.InsurancePlan
	Booking   *model.Booking
	Method    settings.Method
}

// InsuranceBuilder renders the insurance block, pulling policy text either
// from semantic search or from the full document.
type InsuranceBuilder struct {
	fetcher      document.Fetcher
	ingester     Ingester
	searcher     Searcher
	searchLimit  int
	maxExcerpt   int
	supportEmail string
	logger       *logger.Logger
}

// NewInsuranceBuilder creates an InsuranceBuilder.
func NewInsuranceBuilder(
	fetcher document.Fetcher,
	ingester Ingester,
	searcher Searcher,
	searchLimit, maxExcerpt int,
	supportEmail string,
	log *logger.Logger,
) *InsuranceBuilder {
	return &InsuranceBuilder{
		fetcher:      fetcher,
		ingester:     ingester,
		searcher:     searcher,
		searchLimit:  searchLimit,
		maxExcerpt:   maxExcerpt,
		supportEmail: supportEmail,
		logger:       log,
	}
}

// Build renders the insurance block for in. It never fails; upstream
// problems degrade to a placeholder line.
func (b *InsuranceBuilder) Build(ctx context.Context, in InsuranceInput) string {
	ctx, span := tracing.Tracer("contextbuilder").Start(ctx, "contextbuilder.Insurance")
	defer span.End()
	span.SetAttributes(attribute.String("insurance.method", string(in.Method)))

	plan, purchased := in.Purchased, true
	if plan == nil {
		plan, purchased = in.Eligible, false
	}
	if plan == nil {
		metrics.RecordInsuranceContext(string(in.Method), "no_plan")
		return noInsuranceText
	}

	var sb strings.Builder
	sb.WriteString("Insurance Information:\n")
	if purchased {
		fmt.Fprintf(&sb, "- Plan: %s (purchased with this booking)\n", plan.Name)
	} else {
		fmt.Fprintf(&sb, "- Plan: %s (eligible, not yet purchased)\n", plan.Name)
	}
	if in.Booking != nil && purchased {
		fmt.Fprintf(&sb, "- Insurance Cost: $%.2f\n", in.Booking.InsuranceCost)
	}
	if len(plan.Benefits) > 0 {
		sb.WriteString("Benefits:\n")
		for _, benefit := range plan.Benefits {
			fmt.Fprintf(&sb, "- %s\n", benefit)
		}
	}
	sb.WriteString("\n")
	sb.WriteString(b.excerpt(ctx, in.Method, in.Query, plan.TermsURL))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "For insurance claims or anything the policy does not answer, the guest should email %s.", b.supportEmail)
	return sb.String()
}

func (b *InsuranceBuilder) excerpt(ctx context.Context, method settings.Method, query, url string) string {
	if url == "" {
		metrics.RecordInsuranceContext(string(method), "no_document")
		return noDocumentForPlan
	}
	log := b.logger.With(zap.String("url", url), zap.String("method", string(method)))

	if method == settings.MethodVectorSearch {
		if err := b.ingester.EnsureEmbedded(ctx, url); err != nil {
			log.Warn("policy ingestion failed, falling back to full text", zap.Error(err))
		} else if results := b.searcher.Search(ctx, query, url, b.searchLimit); len(results) > 0 {
			texts := make([]string, len(results))
			for i, r := range results {
				texts[i] = r.Text
			}
			metrics.RecordInsuranceContext(string(method), "vector_hit")
			return relevantSectionsHead + "\n" + b.truncate(strings.Join(texts, "\n\n"))
		}
		metrics.RecordInsuranceContext(string(method), "fallback")
	}

	text, err := b.fetcher.Fetch(ctx, url)
	if err != nil || strings.TrimSpace(text) == "" {
		log.Warn("policy document unavailable", zap.Error(err))
		metrics.RecordInsuranceContext(string(method), "failure")
		return documentUnavailable
	}
	if method != settings.MethodVectorSearch {
		metrics.RecordInsuranceContext(string(method), "extract")
	}
	return fullTextHead + "\n" + b.truncate(strings.TrimSpace(text))
}

func (b *InsuranceBuilder) truncate(s string) string {
	return truncate(s, b.maxExcerpt)
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncatedMarker
}
