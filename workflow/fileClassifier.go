package workflow

import (
	"slices"
	"strings"

	"github.com/Wawaweaa/fitax-steamlit-mvp/config"
	"github.com/Wawaweaa/fitax-steamlit-mvp/models"
	"github.com/sirupsen/logrus"
)

// Marker columns that identify each export. Headers are compared after models.NormalizeHeader.
var (
	SettlementMarkers = []string{
		models.ColSettlementTime,
		models.ColPaidOrRefunded,
		models.ColCommission,
		models.ColAfterSaleId,
	}
	OrdersMarkers = []string{
		models.ColMerchantCode,
		models.ColTotalPrice,
		models.ColSkuCount,
		models.ColOrderTime,
	}
)

// MinMarkerMatches is how many markers a header needs to qualify for a role in the default mode.
const MinMarkerMatches = 3

const (
	DiagnosticUnreadable    = "unreadable"
	DiagnosticUnrecognized  = "no column signature matched"
	DiagnosticAmbiguous     = "matches both settlement and orders signatures"
	DiagnosticDuplicateRole = "duplicate role"
)

type ClassifierOptions struct {
	// RequireAllMarkers demands every marker instead of MinMarkerMatches.
	RequireAllMarkers bool
}

type Diagnostic struct {
	File            string          `json:"file"`
	Reason          string          `json:"reason"`
	Role            models.FileRole `json:"role,omitempty"`
	SettlementScore int             `json:"settlementScore"`
	OrdersScore     int             `json:"ordersScore"`
}

type ClassifiedFile struct {
	File  models.RawFile
	Role  models.FileRole
	Score int

	diag Diagnostic
}

type Classification struct {
	Settlement  *ClassifiedFile
	Orders      *ClassifiedFile
	Diagnostics []Diagnostic
}

// Names returns the file name chosen for each role; roles without a file are omitted.
func (c *Classification) Names() map[models.FileRole]string {
	out := make(map[models.FileRole]string, 2)
	if c.Settlement != nil {
		out[models.FileRoleSettlement] = c.Settlement.File.Name
	}
	if c.Orders != nil {
		out[models.FileRoleOrders] = c.Orders.File.Name
	}
	return out
}

// Require returns MissingInputError for the first role without a file, settlement first.
func (c *Classification) Require() error {
	if c.Settlement == nil {
		return &models.MissingInputError{Role: models.FileRoleSettlement}
	}
	if c.Orders == nil {
		return &models.MissingInputError{Role: models.FileRoleOrders}
	}
	return nil
}

func markerScore(header []string, markers []string) int {
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		seen[h] = true
	}
	score := 0
	for _, m := range markers {
		if seen[models.NormalizeHeader(m)] {
			score++
		}
	}
	return score
}

func qualifies(score, markerCount int, opts ClassifierOptions) bool {
	if opts.RequireAllMarkers {
		return score == markerCount
	}
	return score >= MinMarkerMatches
}

// ClassifyHeader scores one header row against both signatures and returns the winning role,
// or "" with a diagnostic reason when the header is unrecognized or ambiguous.
func ClassifyHeader(header []string, opts ClassifierOptions) (role models.FileRole, score int, diag Diagnostic) {
	settlementScore := markerScore(header, SettlementMarkers)
	ordersScore := markerScore(header, OrdersMarkers)
	diag = Diagnostic{SettlementScore: settlementScore, OrdersScore: ordersScore}

	isSettlement := qualifies(settlementScore, len(SettlementMarkers), opts)
	isOrders := qualifies(ordersScore, len(OrdersMarkers), opts)

	switch {
	case isSettlement && isOrders && settlementScore == ordersScore:
		diag.Reason = DiagnosticAmbiguous
		return "", 0, diag
	case isSettlement && (!isOrders || settlementScore > ordersScore):
		return models.FileRoleSettlement, settlementScore, diag
	case isOrders:
		return models.FileRoleOrders, ordersScore, diag
	}
	diag.Reason = DiagnosticUnrecognized
	return "", 0, diag
}

// ClassifyFiles labels each candidate by reading only its header row.
// The outcome does not depend on input order: when several files qualify for one role the highest
// score wins, then the smallest name. A missing role is reported by Classification.Require, so the
// caller still gets the diagnostics.
func ClassifyFiles(files []models.RawFile, opts ClassifierOptions) (*Classification, error) {
	result := &Classification{}
	candidates := map[models.FileRole][]ClassifiedFile{}

	for _, file := range files {
		header, err := models.ReadHeader(file)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				File:   file.Name,
				Reason: DiagnosticUnreadable + ": " + err.Error(),
			})
			continue
		}

		role, score, diag := ClassifyHeader(header, opts)
		if role == "" {
			diag.File = file.Name
			result.Diagnostics = append(result.Diagnostics, diag)
			continue
		}
		candidates[role] = append(candidates[role], ClassifiedFile{File: file, Role: role, Score: score, diag: diag})
	}

	for _, role := range []models.FileRole{models.FileRoleSettlement, models.FileRoleOrders} {
		list := candidates[role]
		if len(list) == 0 {
			continue
		}
		slices.SortStableFunc(list, func(a, b ClassifiedFile) int {
			if a.Score != b.Score {
				return b.Score - a.Score
			}
			return strings.Compare(a.File.Name, b.File.Name)
		})

		winner := list[0]
		switch role {
		case models.FileRoleSettlement:
			result.Settlement = &winner
		case models.FileRoleOrders:
			result.Orders = &winner
		}
		for _, loser := range list[1:] {
			diag := loser.diag
			diag.File = loser.File.Name
			diag.Reason = DiagnosticDuplicateRole
			diag.Role = role
			result.Diagnostics = append(result.Diagnostics, diag)
		}
	}

	slices.SortStableFunc(result.Diagnostics, func(a, b Diagnostic) int {
		if c := strings.Compare(a.File, b.File); c != 0 {
			return c
		}
		return strings.Compare(a.Reason, b.Reason)
	})

	config.GetLogger().WithFields(logrus.Fields{
		"field":       "ClassifyFiles",
		"files":       len(files),
		"diagnostics": len(result.Diagnostics),
	}).Debug("classified uploaded files")

	return result, nil
}
