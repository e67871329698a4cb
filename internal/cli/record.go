package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/entropyworks/entropymem/internal/client"
	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put [content]",
	Short: "Store content in the record (starts the decay clock)",
	Long:  "Store content in the record, replacing whatever was there. With no argument, or with '-', content is read from stdin. Oversized input is truncated.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var content []byte
		if len(args) == 0 || args[0] == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			content = data
		} else {
			content = []byte(args[0])
		}

		n, err := client.New().Put(content)
		if err != nil {
			return err
		}
		if n < len(content) {
			fmt.Fprintf(os.Stderr, "stored %d of %d bytes (truncated)\n", n, len(content))
		} else {
			fmt.Fprintf(os.Stderr, "stored %d bytes\n", n)
		}
		return nil
	},
}

var (
	getOffset int
	getMax    int
)

var getCmd = &cobra.Command{
	Use:   "get",
	Short: "Read the record's current (possibly decayed) content",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := client.New().Get(getOffset, getMax)
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		// Keep shells tidy when the content has no trailing newline.
		if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
			fmt.Println()
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the record",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.New().Clear(); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "cleared")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the record's decay state",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New()
		if !c.Healthy() {
			return fmt.Errorf("server unreachable (is 'entropymem serve' running?)")
		}

		st, err := c.RecordState()
		if err != nil {
			return err
		}

		fmt.Printf("state:    %s\n", st.State)
		fmt.Printf("length:   %d bytes\n", st.Length)
		fmt.Printf("decayed:  %d/%d positions\n", st.Decayed, st.Length)
		if st.Length > 0 {
			fmt.Printf("written:  %s (%ds ago)\n", st.WrittenAt, st.AgeSeconds)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show journal aggregates for boundary operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := client.New().Stats()
		if err != nil {
			return err
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, bytes.TrimSpace(data), "", "  "); err != nil {
			// Not JSON? Print it raw rather than hiding it.
			fmt.Println(strings.TrimSpace(string(data)))
			return nil
		}
		fmt.Println(pretty.String())
		return nil
	},
}

func init() {
	getCmd.Flags().IntVar(&getOffset, "offset", 0, "byte offset to read from")
	getCmd.Flags().IntVar(&getMax, "max", 0, "maximum bytes to read (0 = server default)")
}
