package main

import (
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func (c *cli) albumsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "albums [id]",
		Short: "List your albums or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.app()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if len(args) == 1 {
				a, err := app.Albums.Get(ctx, args[0])
				if err != nil {
					return err
				}
				text, err := app.Summary.AlbumDetail(a)
				if err != nil {
					return err
				}
				c.printf("%s", text)
				return nil
			}

			list, err := app.Albums.List(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				c.printf("No albums yet. Create one with 'memora album'.\n")
				return nil
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			c.printf("%s\n", c.styles.Title.Render("Your Albums"))
			for _, a := range list {
				_, _ = tw.Write([]byte(a.ID + "\t" + a.Title + "\t" + a.Status.Label() + "\t" +
					humanize.Comma(int64(a.UploadedPhotoCount)) + " photos\t" + humanize.Time(a.CreatedAt) + "\n"))
			}
			return tw.Flush()
		},
	}
}
