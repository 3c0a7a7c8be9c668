package commands

import (
	"github.com/erraggy/oasbind"
)

// VersionOutput is the structured form of the version command.
type VersionOutput struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"buildTime" yaml:"buildTime"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
}

// HandleVersion prints build information. With a json or yaml argument the
// output is structured.
func HandleVersion(args []string, env Env) error {
	format := FormatText
	if len(args) > 0 {
		format = args[0]
	}
	if err := ValidateOutputFormat(format); err != nil {
		return err
	}

	if format == FormatText {
		Writef(env.Stdout, "oasbind v%s\n", oasbind.Version())
		Writef(env.Stdout, "commit: %s\n", oasbind.Commit())
		Writef(env.Stdout, "built: %s\n", oasbind.BuildTime())
		Writef(env.Stdout, "go: %s\n", oasbind.GoVersion())
		return nil
	}
	return OutputStructured(env.Stdout, VersionOutput{
		Version:   oasbind.Version(),
		Commit:    oasbind.Commit(),
		BuildTime: oasbind.BuildTime(),
		GoVersion: oasbind.GoVersion(),
	}, format)
}
