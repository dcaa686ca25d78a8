package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// execute runs cmd under a root carrying the shared flags.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	root := &cobra.Command{Use: "memefang", SilenceUsage: true, SilenceErrors: true}
	AddPersistentFlags(root)
	root.AddCommand(cmd)

	var stdout, stderr bytes.Buffer

	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)

	err := root.Execute()

	return stdout.String(), stderr.String(), err
}

// writeCSV writes a processed collection file with days of posts rising to
// a midpoint peak and returns its path.
func writeCSV(t *testing.T, dir, meme string, days int) string {
	t.Helper()

	var b strings.Builder

	b.WriteString("id,author,created_utc,score,num_comments,subreddit,title\n")

	start := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	for day := range days {
		for i := range 1 + min(day, days-day) {
			ts := start.AddDate(0, 0, day).Add(time.Duration(i) * time.Hour)
			fmt.Fprintf(&b, "%s_%d_%d,user%d,%s,%d,%d,r%d,post\n",
				meme, day, i, i%4, ts.Format("2006-01-02 15:04:05"), 10+i, i, i%2)
		}
	}

	path := filepath.Join(dir, "processed_reddit_"+meme+"_20240301_120000.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))

	return path
}
