package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/iwvelando/home-affordability/internal/config"
	"github.com/iwvelando/home-affordability/internal/listings"
	"github.com/iwvelando/home-affordability/internal/logging"
	"github.com/iwvelando/home-affordability/internal/planner"
	"github.com/iwvelando/home-affordability/internal/state"
	"github.com/iwvelando/home-affordability/pkg/affordability"
	"github.com/iwvelando/home-affordability/pkg/budget"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/iwvelando/home-affordability/pkg/loans"
	"github.com/iwvelando/home-affordability/pkg/output"
	"github.com/iwvelando/home-affordability/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// optionalFloat is a float flag that records whether it was set.
type optionalFloat struct {
	value *float64
}

func (o *optionalFloat) String() string {
	if o.value == nil {
		return ""
	}
	return fmt.Sprint(*o.value)
}

func (o *optionalFloat) Set(s string) error {
	var v float64
	if _, err := fmt.Sscan(s, &v); err != nil {
		return fmt.Errorf("%w: %q is not a number", validation.ErrInvalidInput, s)
	}
	o.value = &v
	return nil
}

type optionalInt struct {
	value *int
}

func (o *optionalInt) String() string {
	if o.value == nil {
		return ""
	}
	return fmt.Sprint(*o.value)
}

func (o *optionalInt) Set(s string) error {
	var v int
	if _, err := fmt.Sscan(s, &v); err != nil {
		return fmt.Errorf("%w: %q is not a whole number", validation.ErrInvalidInput, s)
	}
	o.value = &v
	return nil
}

// loadConfiguration reads the config file, falling back to defaults when it
// does not exist.
func loadConfiguration(path string) (*config.Configuration, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config.Defaults()
	}
	return config.LoadConfiguration(path)
}

func main() {
	// A missing .env file is normal; the API key may come from the environment.
	_ = godotenv.Load()

	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	income := flag.Float64("income", 0, "gross income amount; runs the guided plan when set")
	frequency := flag.String("frequency", string(affordability.Monthly), "income frequency: weekly, monthly, annually")
	var homeValue, downPayment, loanAmount, interestRate optionalFloat
	var loanDuration optionalInt
	flag.Var(&homeValue, "home-value", "home value for a mortgage quote")
	flag.Var(&downPayment, "down-payment", "down payment for a mortgage quote")
	flag.Var(&loanAmount, "loan-amount", "loan amount override for a mortgage quote")
	flag.Var(&interestRate, "interest-rate", "annual interest rate in percent")
	flag.Var(&loanDuration, "loan-duration", "loan duration in years")
	schedule := flag.Bool("schedule", false, "print the amortization schedule")
	startDate := flag.String("start-date", "", "first payment month (YYYY-MM) for schedule dates")
	zip := flag.String("zip", "", "search listings in this ZIP code within the budget band")
	reset := flag.Bool("reset", false, "reset the saved form before running")
	flag.Parse()

	conf, err := loadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := state.NewStore(logger, conf.State)
	if err != nil {
		logger.Fatal("failed to open form store",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	form := state.DefaultForm()
	if !*reset {
		form, err = store.Load(ctx)
		if err != nil {
			logger.Warn("failed to load saved form; starting fresh",
				zap.String("op", "main"),
				zap.Error(err),
			)
			form = state.DefaultForm()
		}
	}

	var report output.Report

	if *income != 0 {
		freq, err := affordability.ParseFrequency(*frequency)
		if err != nil {
			logger.Fatal("invalid income frequency",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		plan, err := planner.New(logger, conf.Plan).Plan(affordability.Income{Value: *income, Frequency: freq})
		if err != nil {
			logger.Fatal("failed to compute plan",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		form = planner.ApplyPlan(form, plan)
		report.Estimate = &plan.Estimate
		report.Quote = &plan.Quote
		report.Summary = plan.Summary
		report.Band = &plan.Band
	}

	form = form.Merge(state.Update{
		HomeValue:    homeValue.value,
		DownPayment:  downPayment.value,
		LoanAmount:   loanAmount.value,
		InterestRate: interestRate.value,
		LoanDuration: loanDuration.value,
	})

	quoteRequested := homeValue.value != nil || downPayment.value != nil || loanAmount.value != nil ||
		interestRate.value != nil || loanDuration.value != nil
	if quoteRequested || (*schedule && report.Quote == nil) {
		quote, err := planner.Quote(form)
		if err != nil {
			logger.Fatal("failed to calculate mortgage",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		form = planner.ApplyQuote(form, quote)
		report.Quote = &quote
		report.Summary = form.ResultText
	}

	if *schedule && report.Quote != nil {
		payments, err := loans.GenerateSchedule(*report.Quote)
		if err != nil {
			logger.Fatal("failed to generate amortization schedule",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		if *startDate != "" {
			if err := loans.AssignDates(payments, *startDate); err != nil {
				logger.Fatal("invalid schedule start date",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
		}
		summary := loans.SummarizeSchedule(payments)
		report.Schedule = payments
		report.ScheduleSummary = &summary
	}

	if err := store.Save(ctx, form); err != nil {
		logger.Error("failed to save form",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if *zip != "" {
		normalized, err := validation.NormalizeZIP(*zip)
		if err != nil {
			logger.Fatal("invalid zip code",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		band := budget.DeriveBand(form.AffordableHome)
		client := listings.NewClient(logger, conf.Listings, nil)
		results, err := client.Search(ctx, listings.Request{
			ZIP:            normalized,
			Band:           band,
			AffordableHome: form.AffordableHome,
		})
		if err != nil {
			logger.Fatal("failed to search listings",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		report.Band = &band
		report.Listings = results
		report.BrowseURL = listings.BrowseURL(normalized)
	}

	if report.Estimate == nil && report.Quote == nil && report.Listings == nil {
		logger.Info("nothing to calculate; pass -income, a mortgage flag or -zip",
			zap.String("op", "main"),
		)
		return
	}

	if err := output.Write(os.Stdout, outputFormat, report); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
