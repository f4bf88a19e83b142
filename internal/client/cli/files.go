package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/cloudbox/internal/client/models"
	"github.com/dmitrijs2005/cloudbox/internal/client/session"
	"github.com/dmitrijs2005/cloudbox/internal/client/sink"
	"github.com/dmitrijs2005/cloudbox/internal/client/transfer"
)

func (a *App) List(ctx context.Context) error {
	list, err := a.files.Refresh(ctx)
	if err != nil {
		return err
	}
	a.printFiles(list)
	return nil
}

// Upload sends the file at path and renders its progress. Ctrl-C cancels
// the transfer and returns to the prompt.
func (a *App) Upload(ctx context.Context, path string) error {
	if !a.isLoggedIn() {
		return session.ErrNotAuthenticated
	}

	src, closer, err := transfer.OpenFile(path)
	if err != nil {
		return err
	}
	defer closer.Close()

	tr, err := a.uploads.Upload(ctx, src, a.session.Token())
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Uploading %s (%s)\n", src.Name, formatSize(src.Size))
	last := -1
	out, ok := tr.Wait(func(pct int) {
		if pct != last {
			last = pct
			fmt.Fprintf(a.out, "\r%3d%%", pct)
		}
	})
	if last >= 0 {
		fmt.Fprintln(a.out)
	}

	if !ok {
		fmt.Fprintln(a.out, "Upload cancelled")
		return nil
	}
	if err := out.AsError(); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Upload complete")
	a.printFiles(a.files.Files())
	return nil
}

// Download saves fileName to dest: a local directory or file path, or an
// s3://bucket/prefix URL. An empty dest means the configured download dir.
func (a *App) Download(ctx context.Context, fileName, dest string) error {
	if !a.isLoggedIn() {
		return session.ErrNotAuthenticated
	}

	target, err := sink.ParseTarget(dest, a.config.DownloadDir)
	if err != nil {
		return err
	}
	s, err := a.openSink(ctx, target)
	if err != nil {
		return err
	}

	if rec, ok := a.files.Files().FindByName(fileName); ok {
		fmt.Fprintf(a.out, "Downloading %s (%s)\n", rec.FileName, formatSize(rec.FileSize))
	}
	loc, err := a.files.Download(ctx, fileName, s, target.Key(fileName))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s to %s\n", fileName, loc)
	return nil
}

// Delete asks for confirmation and removes the file with the given id.
func (a *App) Delete(ctx context.Context, rawID string) error {
	if !a.isLoggedIn() {
		return session.ErrNotAuthenticated
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid file id %q", rawID)
	}

	label := fmt.Sprintf("file %d", id)
	if rec, ok := a.files.Files().Find(id); ok {
		label = fmt.Sprintf("%s (id %d)", rec.FileName, id)
	}
	ok, err := confirm(a.reader, "Delete "+label+"?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.files.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted", label)
	a.printFiles(a.files.Files())
	return nil
}

func (a *App) printFiles(list models.Collection) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No files")
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSIZE\tUPLOADED")
	for _, f := range list {
		uploaded := "-"
		if !f.UploadTimestamp.IsZero() {
			uploaded = f.UploadTimestamp.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", f.ID, f.FileName, formatSize(f.FileSize), uploaded)
	}
	_ = tw.Flush()
	fmt.Fprintf(a.out, "%d file(s), %s total\n", len(list), formatSize(list.TotalSize()))
}

// formatSize renders a byte count with a binary unit, e.g. "1.5 KB".
func formatSize(n int64) string {
	if n < 0 {
		return "unknown size"
	}
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	units := []string{"KB", "MB", "GB", "TB"}
	v := float64(n) / unit
	i := 0
	for v >= unit && i < len(units)-1 {
		v /= unit
		i++
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}
