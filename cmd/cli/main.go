package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gobanner/app"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using system environment variables")
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	rootCmd := &cobra.Command{
		Use:           "gobanner",
		Short:         "Survey recoding and banner tabulation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dataPath, "data", "", "Survey data file (.xlsx, .csv or .json)")
	flags.StringVar(&opts.labelsPath, "labels", "", "Labels CSV (variable, code, label) for CSV data")
	flags.StringVar(&opts.planPath, "plan", "", "YAML analysis plan")
	flags.StringSliceVar(&opts.banners, "banner", nil, "Banner variables, in order")
	flags.StringSliceVar(&opts.rows, "row", nil, "Extra numeric or unclassified row variables")
	flags.BoolVar(&opts.acceptRecommended, "accept-recommended", false, "Answer every pending decision with its recommended options")
	flags.StringVar(&opts.format, "format", "table", "Output format: table|json")

	rootCmd.AddCommand(
		newClassifyCmd(opts),
		newRecodeCmd(opts),
		newTablesCmd(opts),
		newAuditCmd(opts),
		newSyntaxCmd(opts),
	)
	return rootCmd
}

func newClassifyCmd(opts *runOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Classify every variable and list banner candidates",
		Long: `Resolve missing codes and classify each variable as ordinal scale, nominal,
binary, numeric or unclassified. Ambiguous classifications are flagged.

Example: gobanner classify --data survey.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.execute(cmd.Context(), cmd.ErrOrStderr(), func(r *app.Result) bool {
				return len(r.Classifications) > 0
			})
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), res.Classifications, func() error {
				renderClassifications(cmd.OutOrStdout(), res.Classifications)
				renderWarnings(cmd.OutOrStdout(), res.Warnings)
				return nil
			})
		},
	}
}

func newRecodeCmd(opts *runOptions) *cobra.Command {
	var derivedPath string

	cmd := &cobra.Command{
		Use:   "recode",
		Short: "Derive top/bottom box variables from ordinal scales",
		Long: `Classify, then derive one binary box variable per ordinal scale.

Example: gobanner recode --data survey.csv --labels labels.csv --accept-recommended --derived derived.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.execute(cmd.Context(), cmd.ErrOrStderr(), func(r *app.Result) bool {
				return r.Derived != nil
			})
			if err != nil {
				return err
			}
			if derivedPath != "" {
				if err := writeJSONFile(derivedPath, res.Derived.Document()); err != nil {
					return err
				}
			}
			derived := res.Derived.Derived()
			return opts.render(cmd.OutOrStdout(), derived, func() error {
				renderRecodings(cmd.OutOrStdout(), derived)
				renderWarnings(cmd.OutOrStdout(), res.Warnings)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&derivedPath, "derived", "", "Write the derived dataset as a JSON document")
	return cmd
}

func newTablesCmd(opts *runOptions) *cobra.Command {
	var out outputPaths

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Build the banner table with significance tests",
		Long: `Run the whole pipeline and print the banner table. Artifacts named in the plan's
output section or by flags are written alongside.

Example: gobanner tables --data survey.xlsx --banner REGION,GENDER --workbook banner.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.execute(cmd.Context(), cmd.ErrOrStderr(), func(r *app.Result) bool {
				return r.Table != nil
			})
			if err != nil {
				return err
			}
			if err := writeOutputs(opts.outputs(out), res); err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), res.Table, func() error {
				renderTable(cmd.OutOrStdout(), *res.Table)
				renderSignificance(cmd.OutOrStdout(), res.Significance)
				renderWarnings(cmd.OutOrStdout(), res.Warnings)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out.Workbook, "workbook", "", "Write the banner workbook (.xlsx)")
	cmd.Flags().StringVar(&out.Verification, "verification", "", "Write the verification document (.yaml)")
	cmd.Flags().StringVar(&out.Syntax, "syntax", "", "Write CTABLES verification syntax")
	cmd.Flags().StringVar(&out.Derived, "derived", "", "Write the derived dataset (.json)")
	cmd.Flags().StringVar(&out.Audit, "audit", "", "Write the audit report (.html or .md)")
	return cmd
}

func newAuditCmd(opts *runOptions) *cobra.Command {
	var htmlPath string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Summarise classification, recoding and banner columns before tabulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.execute(cmd.Context(), cmd.ErrOrStderr(), func(r *app.Result) bool {
				return r.Audit != nil
			})
			if err != nil {
				return err
			}
			if htmlPath != "" {
				if err := os.WriteFile(htmlPath, res.Audit.HTML(), 0o644); err != nil {
					return fmt.Errorf("failed to write audit report: %w", err)
				}
			}
			return opts.render(cmd.OutOrStdout(), res.Audit, func() error {
				_, err := fmt.Fprint(cmd.OutOrStdout(), res.Audit.Markdown())
				return err
			})
		},
	}
	cmd.Flags().StringVar(&htmlPath, "html", "", "Also write the report as HTML")
	return cmd
}

func newSyntaxCmd(opts *runOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "syntax",
		Short: "Print CTABLES syntax that reproduces every tabulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.execute(cmd.Context(), cmd.ErrOrStderr(), func(r *app.Result) bool {
				return r.Verification != nil
			})
			if err != nil {
				return err
			}
			return opts.render(cmd.OutOrStdout(), res.Verification, func() error {
				_, err := fmt.Fprint(cmd.OutOrStdout(), syntaxOf(*res.Verification))
				return err
			})
		},
	}
}
