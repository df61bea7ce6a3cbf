package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/JailtonJunior94/aeon-kit/pkg/apperrors"
	"github.com/JailtonJunior94/aeon-kit/pkg/contact"
	"github.com/JailtonJunior94/aeon-kit/pkg/form"
	"github.com/JailtonJunior94/aeon-kit/pkg/httpclient"
	"github.com/JailtonJunior94/aeon-kit/pkg/responses"
	"github.com/JailtonJunior94/aeon-kit/pkg/submission"
	"github.com/spf13/cobra"
)

var errEmptyReceipt = errors.New("server returned an empty receipt")

func newContactCommand(a *app) *cobra.Command {
	var (
		server  string
		payload form.ContactForm
	)

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Submit the contact form to a running server",
		Long:  "Submits the contact form and prints every state the submission goes through.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" {
				server = "http://localhost:" + a.cfg.HTTPPort
			}
			return a.submitContact(cmd.Context(), cmd.OutOrStdout(), server, payload)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "site base URL (default http://localhost:$HTTP_PORT)")
	cmd.Flags().StringVar(&payload.Name, "name", "", "your name")
	cmd.Flags().StringVar(&payload.Contact, "contact", "", "how to reach you")
	cmd.Flags().StringVar(&payload.Question, "question", "", "your question")
	return cmd
}

func (a *app) submitContact(ctx context.Context, out io.Writer, server string, payload form.ContactForm) error {
	client := httpclient.NewClient(a.logger,
		httpclient.WithClientTimeout(a.cfg.RequestTimeout),
		httpclient.WithRetry(a.cfg.RetryAttempts, a.cfg.RetryInterval, httpclient.DefaultRetryPolicy),
	)
	endpoint := strings.TrimRight(server, "/") + "/api/contact"

	machine := submission.New(func(ctx context.Context, f form.ContactForm) (contact.Receipt, error) {
		return postContact(ctx, client, endpoint, f)
	}, submission.Options[contact.Receipt]{
		Logger: a.logger.Child("ContactCommand"),
		OnChange: func(state submission.State[contact.Receipt]) {
			fmt.Fprintln(out, describeState(state))
		},
	})

	receipt, ok := machine.Submit(ctx, payload)
	if !ok {
		err := machine.State().Err
		for _, fieldErr := range fieldErrors(err) {
			fmt.Fprintf(out, "  - %s: %s\n", fieldErr.Path, fieldErr.Message)
		}
		return err
	}

	fmt.Fprintf(out, "receipt %s received at %s\n", receipt.ID, receipt.ReceivedAt.Format("2006-01-02T15:04:05Z07:00"))
	return nil
}

func postContact(ctx context.Context, client httpclient.HTTPClient, endpoint string, f form.ContactForm) (contact.Receipt, error) {
	body, err := httpclient.JSONBody(f)
	if err != nil {
		return contact.Receipt{}, err
	}

	headers := map[string]string{"Content-Type": "application/json"}
	receipt, err := httpclient.MakeRequest[contact.Receipt](ctx, client, http.MethodPost, endpoint, headers, body)
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			return contact.Receipt{}, responses.ParseError(statusErr.StatusCode, statusErr.Body)
		}
		return contact.Receipt{}, err
	}
	if receipt == nil {
		return contact.Receipt{}, errEmptyReceipt
	}
	return *receipt, nil
}

func describeState(state submission.State[contact.Receipt]) string {
	switch {
	case state.IsSubmitting:
		return "submitting..."
	case state.IsSuccess:
		return "submitted"
	case state.Failed():
		return "failed: " + state.Err.Error()
	}
	return "idle"
}

func fieldErrors(err error) []apperrors.FieldError {
	appErr, ok := apperrors.As(err)
	if !ok {
		return nil
	}
	return appErr.FieldErrors()
}
