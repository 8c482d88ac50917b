package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sadopc/solartrack/internal/backup"
	"github.com/spf13/cobra"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Back up and restore the whole database",
	}

	var (
		compress bool
		out      string
	)
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Write every project, employee and entry to a backup file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.outputPath(out, backup.Filename(a.now(), compress))
			var sum backup.Summary
			err := writeFile(path, func(f *os.File) error {
				var err error
				sum, err = a.backup.Create(cmd.Context(), f, backup.CreateOptions{Compress: compress})
				return err
			})
			if err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Backup written to %s (%s): %s",
				path, humanize.Bytes(uint64(info.Size())), summaryText(sum))
			return nil
		},
	}
	createCmd.Flags().BoolVarP(&compress, "compress", "z", false, "compress with xz")
	createCmd.Flags().StringVarP(&out, "out", "o", "", "output file")

	var yes bool
	restoreCmd := &cobra.Command{
		Use:   "restore FILE",
		Short: "Replace ALL data with the content of a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return a.restore(cmd, f, yes)
		},
	}
	restoreCmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Create a backup and upload it to the configured S3 bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			remote, err := a.remote(cmd)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			sum, err := a.backup.Create(ctx, &buf, backup.CreateOptions{Compress: true})
			if err != nil {
				return err
			}
			name := backup.Filename(a.now(), true)
			size := buf.Len()
			if err := remote.Push(ctx, name, &buf); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Uploaded %s (%s): %s", name, humanize.Bytes(uint64(size)), summaryText(sum))
			return nil
		},
	}

	var pullYes bool
	pullCmd := &cobra.Command{
		Use:   "pull NAME",
		Short: "Download a backup from S3 and restore it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, err := a.remote(cmd)
			if err != nil {
				return err
			}
			rc, err := remote.Pull(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer rc.Close()
			return a.restore(cmd, rc, pullYes)
		},
	}
	pullCmd.Flags().BoolVarP(&pullYes, "yes", "y", false, "do not ask for confirmation")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List backups stored in S3",
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, err := a.remote(cmd)
			if err != nil {
				return err
			}
			objects, err := remote.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(objects) == 0 {
				dimColor.Fprintln(out, "No remote backups.")
				return nil
			}
			tw := newTable(out)
			fmt.Fprintln(tw, "NAME\tSIZE\tUPLOADED")
			for _, o := range objects {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Name, humanize.Bytes(uint64(o.Size)), humanize.Time(o.Modified))
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(createCmd, restoreCmd, pushCmd, pullCmd, listCmd)
	return cmd
}

// newRemote is replaced in tests.
var newRemote = func(cmd *cobra.Command, c backup.S3Config) (backup.Remote, error) {
	return backup.NewS3(cmd.Context(), c)
}

func (a *app) remote(cmd *cobra.Command) (backup.Remote, error) {
	if !a.cfg.S3.Enabled() {
		return nil, fmt.Errorf("no S3 bucket configured: set s3.bucket in the config or SOLARTRACK_S3_BUCKET")
	}
	s := a.cfg.S3
	return newRemote(cmd, backup.S3Config{
		Endpoint:  s.Endpoint,
		Region:    s.Region,
		Bucket:    s.Bucket,
		AccessKey: s.AccessKey,
		SecretKey: s.SecretKey,
		Prefix:    s.Prefix,
	})
}

// restore validates the backup completely before asking, so a broken file
// never reaches the confirmation prompt.
func (a *app) restore(cmd *cobra.Command, r io.Reader, yes bool) error {
	snap, err := backup.Decode(r)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	warnColor.Fprintf(out, "The backup contains %s.\n", summaryText(backup.Summary{
		Projects: len(snap.Projects), Employees: len(snap.Employees), Entries: len(snap.Entries),
	}))
	if !yes {
		if err := confirm(cmd.InOrStdin(), out, "Replace ALL current data with it?"); err != nil {
			return err
		}
	}
	sum, err := a.backup.Apply(cmd.Context(), snap)
	if err != nil {
		return err
	}
	success(out, "Restored %s", summaryText(sum))
	return nil
}

func summaryText(s backup.Summary) string {
	parts := []string{
		fmt.Sprintf("%d projects", s.Projects),
		fmt.Sprintf("%d employees", s.Employees),
		fmt.Sprintf("%d entries", s.Entries),
	}
	return strings.Join(parts, ", ")
}

