package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-variant-patients/patients"
	"github.com/goliatone/go-variant-patients/popup"
	"github.com/spf13/cobra"
)

var (
	showFilter string
	showSearch string
	showPage   int
)

var showCmd = &cobra.Command{
	Use:   "show <technology> <variant>",
	Short: "Render one page of a variant's patients",
	Example: `  patientview show SR 1_12345_A_G --filter homo
  patientview show LR 17-43044295-T-C --search xx --page 2`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tech, err := patients.ParseTechnology(args[0])
		if err != nil {
			return err
		}
		filter, err := patients.ParseFilter(showFilter)
		if err != nil {
			return err
		}

		container, _, err := newContainer()
		if err != nil {
			return err
		}

		sink := newTextSink(cmd.OutOrStdout())
		controller := container.NewController(sink)
		defer controller.Close()

		return runShow(cmd.Context(), controller, sink, container.Config().DebounceDelay, tech, args[1], filter)
	},
}

func init() {
	showCmd.Flags().StringVarP(&showFilter, "filter", "f", string(patients.FilterAll), "all, hetero or homo")
	showCmd.Flags().StringVarP(&showSearch, "search", "q", "", "Search term")
	showCmd.Flags().IntVarP(&showPage, "page", "p", 1, "Page number")
}

// runShow replays the interactions a user would make in the popup and lets
// the sink print only the final render.
func runShow(ctx context.Context, controller *popup.Controller, sink *textSink, debounce time.Duration, tech patients.Technology, key string, filter patients.Filter) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sink.quiet = true
	if err := controller.Open(ctx, tech, key); err != nil {
		return err
	}
	controller.Wait()

	if controller.Phase() == popup.PhaseError {
		sink.flush()
		return errors.New(sink.lastError)
	}

	if filter != patients.FilterAll {
		if err := controller.ToggleFilter(filter); err != nil {
			return err
		}
	}

	if showSearch != "" {
		sink.armRender()
		controller.Search(showSearch)
		if err := sink.awaitRender(ctx, debounce+2*time.Second); err != nil {
			return fmt.Errorf("search: %w", err)
		}
	}

	if showPage != 1 {
		if err := controller.GoToPage(showPage); err != nil {
			return err
		}
	}

	sink.flush()
	return nil
}
