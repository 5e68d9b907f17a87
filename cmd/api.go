package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/spotboard/internal/shared"
	"github.com/urfave/cli/v3"
)

// APIRequest sends an authenticated request to a Web API path and prints the response.
func (r *Runner) APIRequest(method string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		path := cmd.Args().First()
		if path == "" {
			return fmt.Errorf("%w: path", shared.ErrMissingArgument)
		}
		data := cmd.String("data")

		return r.withReauth(ctx, func() error {
			svc, err := r.service(ctx)
			if err != nil {
				return err
			}

			r.logger.Info("api request", "method", method, "path", path)

			resp, err := svc.Raw(ctx, method, path, []byte(data))
			if err != nil {
				return err
			}

			if resp.StatusCode == http.StatusUnauthorized {
				return fmt.Errorf("%w: status %d", shared.ErrTokenExpired, resp.StatusCode)
			}
			if !resp.OK() {
				return fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
			}

			if resp.IsJSON {
				return r.writeJSON(resp.JSONData, cmd.Bool("pretty"))
			}

			if len(resp.Body) > 0 {
				r.output.Write(resp.Body)
				r.output.Write([]byte("\n"))
			}
			return nil
		})
	}
}
