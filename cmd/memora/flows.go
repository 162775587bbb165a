package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-memora/pkg/album"
	"github.com/goliatone/go-memora/pkg/gateway"
	"github.com/goliatone/go-memora/pkg/prompt"
	"github.com/goliatone/go-memora/pkg/request"
)

func (c *cli) albumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "album",
		Short: "Create a themed photo album",
		Long: `Create an album in four steps: details, styles, photos and review.
You need to be signed in; run 'memora login' first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := c.sessions()
			if err != nil {
				return err
			}
			if !sessions.Authenticated(cmd.Context()) {
				return errors.New("sign in first with 'memora login'")
			}

			app, err := c.app()
			if err != nil {
				return err
			}
			flow, err := app.NewAlbumFlow(sessions)
			if err != nil {
				return err
			}

			maxPhotos := c.cfg.Flows.Album.Photos.Max
			runner := prompt.NewRunner(flow, c.driver, prompt.AlbumPages(app.Catalog, nil),
				prompt.WithReview[album.Form](func(f *album.Form) (string, error) {
					return app.Summary.AlbumReview(f.Snapshot(), maxPhotos)
				}),
				prompt.WithStyles[album.Form](c.styles),
			)
			outcome, err := runner.Run(cmd.Context())
			return c.report("Album created", outcome, err)
		},
	}
}

func (c *cli) requestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "request",
		Short: "Request a photo service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := c.sessions()
			if err != nil {
				return err
			}
			app, err := c.app()
			if err != nil {
				return err
			}
			flow, err := app.NewRequestFlow(sessions)
			if err != nil {
				return err
			}

			runner := prompt.NewRunner(flow, c.driver, prompt.RequestPages(app.Catalog, nil),
				prompt.WithReview[request.Form](func(f *request.Form) (string, error) {
					return app.Summary.RequestReview(f.Snapshot())
				}),
				prompt.WithStyles[request.Form](c.styles),
			)
			outcome, err := runner.Run(cmd.Context())
			return c.report("Request sent", outcome, err)
		},
	}
}

func (c *cli) report(label string, outcome gateway.Outcome, err error) error {
	if errors.Is(err, prompt.ErrAborted) {
		c.printf("%s\n", c.styles.Muted.Render("Cancelled, nothing was submitted."))
		return nil
	}
	if err != nil {
		return err
	}
	c.printf("%s %s\n", c.styles.Success.Render(label+":"), outcome.ID)
	return nil
}
