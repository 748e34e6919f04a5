package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"flight-hold-service/internal/client"
	"flight-hold-service/internal/entity"
)

type rootOptions struct {
	apiURL   string
	interval time.Duration
	timeout  time.Duration
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "flightctl",
		Short:         "Submit flight hold jobs and follow them to an outcome",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultAPI := os.Getenv("FLIGHTCTL_API")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", defaultAPI, "job API base URL (env FLIGHTCTL_API)")
	root.PersistentFlags().DurationVar(&opts.interval, "interval", client.DefaultInterval, "poll interval")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "give up waiting after this long")

	root.AddCommand(newSubmitCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newWaitCmd(opts))

	return root
}

func (o *rootOptions) client() *client.HTTPClient {
	return client.NewHTTPClient(o.apiURL, nil)
}

func (o *rootOptions) poller(c *client.HTTPClient) *client.Poller {
	return client.NewPoller(c, client.WithInterval(o.interval), client.WithTimeout(o.timeout))
}

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	var (
		req  entity.JobRequest
		cls  string
		wait bool
	)

	c := &cobra.Command{
		Use:   "submit",
		Short: "Submit a search-and-hold job",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.SeatClass = entity.CabinClass(cls)
			hc := opts.client()

			id, err := hc.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}
			if !wait {
				return printJSON(cmd.OutOrStdout(), map[string]string{"job_id": id.String()})
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "submitted %s, waiting for outcome\n", id)
			return waitAndPrint(cmd, opts.poller(hc), id)
		},
	}

	c.Flags().StringVar(&req.FromLocation, "from", "", "origin IATA code, e.g. JFK")
	c.Flags().StringVar(&req.ToLocation, "to", "", "destination IATA code, e.g. LHR")
	c.Flags().StringVar(&req.DepartureDate, "date", "", "departure date (YYYY-MM-DD)")
	c.Flags().IntVar(&req.NumPassengers, "passengers", 1, "number of adult passengers")
	c.Flags().StringVar(&cls, "class", string(entity.CabinEconomy), "ECONOMY, PREMIUM_ECONOMY, BUSINESS or FIRST")
	c.Flags().BoolVar(&wait, "wait", false, "poll until the job finishes and print its outcome")
	_ = c.MarkFlagRequired("from")
	_ = c.MarkFlagRequired("to")
	_ = c.MarkFlagRequired("date")

	return c
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Print the current record of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid job id: %w", err)
			}
			job, err := opts.client().GetJob(cmd.Context(), id)
			if err != nil {
				if errors.Is(err, client.ErrNotFound) {
					return fmt.Errorf("job %s not found or expired", id)
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), job)
		},
	}
}

func newWaitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "wait <job-id>",
		Short: "Poll a job until it finishes and print its outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid job id: %w", err)
			}
			return waitAndPrint(cmd, opts.poller(opts.client()), id)
		},
	}
}

func waitAndPrint(cmd *cobra.Command, p *client.Poller, id uuid.UUID) error {
	var session client.Session
	session.Start(id)

	job, err := p.Wait(cmd.Context(), id)
	if err != nil {
		return err
	}
	session.Record(job)

	out, ok := session.Consume()
	if !ok {
		return fmt.Errorf("job %s finished without an outcome", id)
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
