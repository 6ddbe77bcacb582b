package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
)

// ToolConfig documents the knobs the tool reads from flags and environment
type ToolConfig struct {
	Debug    bool   `json:"debug" jsonschema:"title=Debug,description=Enable debug logging"`
	NoColor  bool   `json:"noColor" jsonschema:"title=No Color,description=Disable listing colorization (DISX_NO_COLOR)"`
	LogLevel string `json:"logLevel" jsonschema:"title=Log Level,description=Component log level (DISX_LOG_LEVEL)"`
	LogFile  string `json:"logFile" jsonschema:"title=Log File,description=Component log destination (DISX_LOG_FILE)"`
	MaxLines int    `json:"maxLines" jsonschema:"title=Max Lines,description=Per-symbol disassembly line cap (fixed at 500; not read from flags or environment)"`
}

var schemaCmd = &cobra.Command{
	Use:    "schema",
	Short:  "Generate JSON schema for configuration",
	Long:   "Generate JSON schema for the disx configuration",
	Hidden: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		reflector := new(jsonschema.Reflector)
		bts, err := json.MarshalIndent(reflector.Reflect(&ToolConfig{}), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal schema: %w", err)
		}
		fmt.Println(string(bts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
