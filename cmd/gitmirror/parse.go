package main

import (
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/go/gitmirror/locator"
	"github.com/jmgilman/go/gitmirror/mirror"
)

type parsedName struct {
	Location    string `yaml:"location"`
	Branch      string `yaml:"branch"`
	Remote      bool   `yaml:"remote"`
	Scheme      string `yaml:"scheme,omitempty"`
	URL         string `yaml:"url,omitempty"`
	Username    string `yaml:"username,omitempty"`
	KnownScheme bool   `yaml:"known_scheme,omitempty"`
	Path        string `yaml:"path,omitempty"`
}

func newParseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "parse NAME",
		Short: "Show how a <location>[<branch>] name is interpreted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, ok := locator.ParseReference(args[0])
			if !ok {
				return platformerrors.Newf(platformerrors.CodeInvalidInput, "%q does not have the form <location>[<branch>]", args[0])
			}

			out := parsedName{Location: ref.Location, Branch: ref.Branch}
			if remote, isRemote := locator.ParseRemote(ref.Location); isRemote {
				out.Remote = true
				out.Scheme = remote.Scheme.String()
				out.URL = remote.URL
				out.KnownScheme = locator.KnownScheme(remote.SchemeName()) || remote.SchemeName() == ""
				if remote.Credential != nil {
					out.Username = remote.Credential.Username
				}
				if ref.Branch != "" {
					out.Path = mirror.LocalPath(a.cfg.BaseDir, remote.URL, ref.Branch)
				}
			}

			data, err := yaml.Marshal(out)
			if err != nil {
				return platformerrors.Wrap(err, platformerrors.CodeInternal, "failed to render result")
			}
			_, err = a.out.Write(data)
			return err
		},
	}
}
