package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mockprep/mockprep-go/internal/apiclient"
	"github.com/mockprep/mockprep-go/internal/crypto"
	"github.com/mockprep/mockprep-go/internal/repository"
	"github.com/mockprep/mockprep-go/internal/service"
)

type adminOptions struct {
	remote   bool
	url      string
	email    string
	password string
}

// adminService builds the catalogue service over the local store, or over
// the admin API when --remote is set.
func (a *app) adminService(ctx context.Context, opts adminOptions) (*service.AdminService, error) {
	if !opts.remote {
		return service.NewAdminService(repository.NewLocal(a.store)), nil
	}

	base := opts.url
	if base == "" {
		base = "http://localhost:" + a.cfg.Port
	}
	email := opts.email
	if email == "" {
		email = a.cfg.AdminEmail
	}
	password := opts.password
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	if password == "" {
		return nil, errors.New("--admin-password or ADMIN_PASSWORD is required with --remote")
	}

	httpClient := &http.Client{Timeout: a.cfg.RequestTimeout}
	login := apiclient.New(base, apiclient.WithHTTPClient(httpClient), apiclient.WithLogger(a.logger))
	token, err := repository.AdminLogin(ctx, login, email, password)
	if err != nil {
		return nil, fmt.Errorf("admin login: %s", apiclient.Message(err, err.Error()))
	}

	client := apiclient.New(base,
		apiclient.WithHTTPClient(httpClient),
		apiclient.WithLogger(a.logger),
		apiclient.WithAuth(apiclient.StaticToken(token)),
	)
	return service.NewAdminService(repository.NewRemote(client)), nil
}

func adminCmd(a *app) *cobra.Command {
	var opts adminOptions
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage the admin catalogue",
	}
	cmd.PersistentFlags().BoolVar(&opts.remote, "remote", false, "Use the admin API instead of the local store")
	cmd.PersistentFlags().StringVar(&opts.url, "admin-url", "", "Admin API base URL (default http://localhost:$PORT)")
	cmd.PersistentFlags().StringVar(&opts.email, "admin-email", "", "Admin email (default ADMIN_EMAIL)")
	cmd.PersistentFlags().StringVar(&opts.password, "admin-password", "", "Admin password (default ADMIN_PASSWORD)")

	svc := func(ctx context.Context) (*service.AdminService, error) {
		return a.adminService(ctx, opts)
	}

	cmd.AddCommand(
		entityCmd(a, svc, "categories",
			(*service.AdminService).ListCategories,
			(*service.AdminService).CreateCategory,
			(*service.AdminService).UpdateCategory,
			(*service.AdminService).DeleteCategory,
		),
		subCategoriesCmd(a, svc),
		entityCmd(a, svc, "interviews",
			(*service.AdminService).ListInterviews,
			(*service.AdminService).CreateInterview,
			(*service.AdminService).UpdateInterview,
			(*service.AdminService).DeleteInterview,
		),
		entityCmd(a, svc, "hrs",
			(*service.AdminService).ListHRs,
			(*service.AdminService).CreateHR,
			(*service.AdminService).UpdateHR,
			(*service.AdminService).DeleteHR,
		),
		entityCmd(a, svc, "experts",
			(*service.AdminService).ListExperts,
			(*service.AdminService).CreateExpert,
			(*service.AdminService).UpdateExpert,
			(*service.AdminService).DeleteExpert,
		),
		hashPasswordCmd(a),
	)
	return cmd
}

type serviceFunc func(context.Context) (*service.AdminService, error)

func subCategoriesCmd(a *app, svc serviceFunc) *cobra.Command {
	cmd := entityCmd(a, svc, "subcategories",
		(*service.AdminService).ListSubCategories,
		(*service.AdminService).CreateSubCategory,
		(*service.AdminService).UpdateSubCategory,
		(*service.AdminService).DeleteSubCategory,
	)
	cmd.AddCommand(&cobra.Command{
		Use:   "by-category <category-id>",
		Short: "List the subcategories of one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := svc(cmd.Context())
			if err != nil {
				return err
			}
			subs, err := s.ListSubCategoriesByCategory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printJSON(subs)
		},
	})
	return cmd
}

// entityCmd builds list/create/update/delete subcommands for one collection.
// Records and patches are given as JSON with --data.
func entityCmd[T, P any](
	a *app,
	svc serviceFunc,
	name string,
	list func(*service.AdminService, context.Context) ([]T, error),
	create func(*service.AdminService, context.Context, T) (T, error),
	update func(*service.AdminService, context.Context, string, P) (T, error),
	remove func(*service.AdminService, context.Context, string) error,
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: "Manage " + name,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List " + name,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := svc(cmd.Context())
			if err != nil {
				return err
			}
			items, err := list(s, cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(items)
		},
	})

	var createData string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record from --data JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			var item T
			if err := decodeData(createData, &item); err != nil {
				return err
			}
			s, err := svc(cmd.Context())
			if err != nil {
				return err
			}
			created, err := create(s, cmd.Context(), item)
			if err != nil {
				return err
			}
			return a.printJSON(created)
		},
	}
	createCmd.Flags().StringVar(&createData, "data", "", "Record as JSON")
	cmd.AddCommand(createCmd)

	var updateData string
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a record with the fields in --data JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch P
			if err := decodeData(updateData, &patch); err != nil {
				return err
			}
			s, err := svc(cmd.Context())
			if err != nil {
				return err
			}
			updated, err := update(s, cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return a.printJSON(updated)
		},
	}
	updateCmd.Flags().StringVar(&updateData, "data", "", "Fields to change as JSON")
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := svc(cmd.Context())
			if err != nil {
				return err
			}
			if err := remove(s, cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s from %s\n", args[0], name)
			return nil
		},
	})
	return cmd
}

func decodeData(data string, v any) error {
	if strings.TrimSpace(data) == "" {
		return errors.New("--data is required")
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid --data: %w", err)
	}
	return nil
}

func hashPasswordCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Print an Argon2id hash for ADMIN_PASSWORD_HASH",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = a.readLine("Password: "); err != nil {
					return err
				}
			}
			hash, err := crypto.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password to hash (prompted when empty)")
	return cmd
}
