// Package output provides utilities for formatting and displaying calculator results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/home-affordability/internal/listings"
	"github.com/iwvelando/home-affordability/pkg/affordability"
	"github.com/iwvelando/home-affordability/pkg/budget"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/format"
	"github.com/iwvelando/home-affordability/pkg/loans"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report collects the results of one CLI run. Nil sections were not computed.
type Report struct {
	Estimate        *affordability.Estimate `json:"estimate,omitempty"`
	Quote           *loans.Quote            `json:"quote,omitempty"`
	Summary         string                  `json:"summary,omitempty"`
	Band            *budget.Band            `json:"band,omitempty"`
	Schedule        []loans.Payment         `json:"schedule,omitempty"`
	ScheduleSummary *loans.ScheduleSummary  `json:"scheduleSummary,omitempty"`
	Listings        []listings.Listing      `json:"listings,omitempty"`
	BrowseURL       string                  `json:"browseUrl,omitempty"`
}

// Write renders report in the named format.
func Write(w io.Writer, outputFormat string, report Report) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, report)
	case constants.OutputFormatCSV:
		return CsvFormat(w, report)
	case constants.OutputFormatJSON:
		return JSONFormat(w, report)
	}
	return fmt.Errorf("unsupported output format %q", outputFormat)
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, report Report) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	if report.Estimate != nil {
		b.WriteString("--- Affordability ---\n")
		_, _ = p.Fprintf(&b, "Income          | $%.2f %s\n", report.Estimate.Income.Value, report.Estimate.Income.Frequency)
		_, _ = p.Fprintf(&b, "Annual income   | $%.2f\n", report.Estimate.Annual)
		_, _ = p.Fprintf(&b, "Affordable home | $%.0f\n", report.Estimate.AffordableHome)
		b.WriteString("\n")
	}

	if report.Quote != nil {
		q := report.Quote
		b.WriteString("--- Mortgage ---\n")
		fmt.Fprintf(&b, "Home value      | %s\n", format.Currency(q.HomeValue))
		fmt.Fprintf(&b, "Down payment    | %s\n", format.Currency(q.DownPayment))
		fmt.Fprintf(&b, "Loan amount     | %s\n", format.Currency(q.LoanAmount))
		fmt.Fprintf(&b, "Interest rate   | %s\n", format.Percent(q.InterestRate))
		fmt.Fprintf(&b, "Loan duration   | %d years\n", q.LoanDuration)
		_, _ = p.Fprintf(&b, "Monthly payment | $%.0f\n", q.MonthlyPayment)
		b.WriteString("\n")
	}

	if report.Summary != "" {
		b.WriteString(report.Summary)
		b.WriteString("\n\n")
	}

	if report.Band != nil && report.Band.Valid() {
		_, _ = p.Fprintf(&b, "Search band: $%.0f to $%.0f\n\n", report.Band.Lower, report.Band.Upper)
	}

	if len(report.Schedule) > 0 {
		b.WriteString("--- Amortization schedule ---\n")
		b.WriteString("Month | Payment | Principal | Interest | Remaining\n")
		b.WriteString("_____ | _______ | _________ | ________ | _________\n")
		for _, payment := range report.Schedule {
			label := fmt.Sprint(payment.Month)
			if payment.Date != "" {
				label = payment.Date
			}
			_, _ = p.Fprintf(&b, "%s | $%.2f | $%.2f | $%.2f | $%.2f\n",
				label, payment.Payment, payment.Principal, payment.Interest, payment.RemainingPrincipal)
		}
		if report.ScheduleSummary != nil {
			_, _ = p.Fprintf(&b, "Total paid: $%.2f, total interest: $%.2f\n",
				report.ScheduleSummary.TotalPaid, report.ScheduleSummary.TotalInterest)
		}
		b.WriteString("\n")
	}

	if report.Listings != nil {
		b.WriteString("--- Listings ---\n")
		if len(report.Listings) == 0 {
			b.WriteString("No listings found in this price range.\n")
		}
		for _, listing := range report.Listings {
			marker := ""
			if listing.WithinBudget {
				marker = " (within budget)"
			}
			_, _ = p.Fprintf(&b, "$%.0f | %s | %v bd | %v ba | %v sqft%s\n",
				listing.Price, listing.Address, listing.Beds, listing.Baths, listing.Sqft, marker)
		}
		if report.BrowseURL != "" {
			fmt.Fprintf(&b, "Browse more: %s\n", report.BrowseURL)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CsvFormat outputs in comma-separated value format. The most detailed table
// present is written: the schedule, then listings, then the summary fields.
func CsvFormat(w io.Writer, report Report) error {
	var b strings.Builder

	switch {
	case len(report.Schedule) > 0:
		b.WriteString(`"month","date","payment","principal","interest","remaining principal"` + "\n")
		for _, payment := range report.Schedule {
			fmt.Fprintf(&b, `"%d","%s","%.2f","%.2f","%.2f","%.2f"`+"\n",
				payment.Month, payment.Date, payment.Payment, payment.Principal, payment.Interest, payment.RemainingPrincipal)
		}
	case report.Listings != nil:
		b.WriteString(`"id","price","address","beds","baths","sqft","within budget","img"` + "\n")
		for _, listing := range report.Listings {
			fmt.Fprintf(&b, `"%s","%.2f","%s","%v","%v","%v","%t","%s"`+"\n",
				csvEscape(listing.ID), listing.Price, csvEscape(listing.Address),
				listing.Beds, listing.Baths, listing.Sqft, listing.WithinBudget, csvEscape(listing.ImageURL))
		}
	default:
		b.WriteString(`"field","value"` + "\n")
		if report.Estimate != nil {
			fmt.Fprintf(&b, `"annual income","%.2f"`+"\n", report.Estimate.Annual)
			fmt.Fprintf(&b, `"affordable home","%.2f"`+"\n", report.Estimate.AffordableHome)
		}
		if report.Quote != nil {
			fmt.Fprintf(&b, `"home value","%.2f"`+"\n", report.Quote.HomeValue)
			fmt.Fprintf(&b, `"down payment","%.2f"`+"\n", report.Quote.DownPayment)
			fmt.Fprintf(&b, `"loan amount","%.2f"`+"\n", report.Quote.LoanAmount)
			fmt.Fprintf(&b, `"interest rate","%v"`+"\n", report.Quote.InterestRate)
			fmt.Fprintf(&b, `"loan duration","%d"`+"\n", report.Quote.LoanDuration)
			fmt.Fprintf(&b, `"monthly payment","%.2f"`+"\n", report.Quote.MonthlyPayment)
		}
		if report.Band != nil && report.Band.Valid() {
			fmt.Fprintf(&b, `"band lower","%.2f"`+"\n", report.Band.Lower)
			fmt.Fprintf(&b, `"band upper","%.2f"`+"\n", report.Band.Upper)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// JSONFormat outputs the report as indented JSON.
func JSONFormat(w io.Writer, report Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func csvEscape(value string) string {
	return strings.ReplaceAll(value, `"`, `""`)
}
