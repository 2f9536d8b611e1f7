package files_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gikkon/cmd/cli/files"
	"github.com/temirov/gikkon/internal/dependencies"
	"github.com/temirov/gikkon/internal/elevation"
	"github.com/temirov/gikkon/internal/filesync"
	"github.com/temirov/gikkon/internal/pathmap"
	"github.com/temirov/gikkon/internal/settings"
)

const (
	testHomeDirectoryConstant   = "/home/operator"
	testMirrorRootConstant      = "/srv/mirror"
	testShellMirrorConstant     = "/srv/mirror/home/.bashrc"
	testShellLiveConstant       = "/home/operator/.bashrc"
	testVimMirrorConstant       = "/srv/mirror/home/.vimrc"
	testHostsMirrorConstant     = "/srv/mirror/etc/hosts"
	testHostsLiveConstant       = "/etc/hosts"
	testGitConfigLiveConstant   = "/home/operator/.gitconfig"
	testGitConfigMirrorPath     = "/srv/mirror/home/.gitconfig"
	testForeignHomeFileConstant = "/home/other/.profile"
	testHostsContentConstant    = "127.0.0.1 localhost\n"
)

type refusingElevator struct{}

func (refusingElevator) CopyWithElevation(context.Context, string, string) elevation.Result {
	return elevation.Result{Diagnostic: "elevation disabled in tests"}
}

func (refusingElevator) DeleteWithElevation(context.Context, string) elevation.Result {
	return elevation.Result{Diagnostic: "elevation disabled in tests"}
}

type filesFixture struct {
	fileSystem afero.Fs
	output     *bytes.Buffer
	builder    files.CommandBuilder
}

func newFilesFixture(testInstance *testing.T, dryRun bool, listConfiguration files.ListConfiguration) *filesFixture {
	testInstance.Helper()

	fileSystem := afero.NewMemMapFs()
	writeFiles := map[string]string{
		testShellMirrorConstant:     "export EDITOR=vi\n",
		testShellLiveConstant:       "export EDITOR=nano\n",
		testVimMirrorConstant:       "set number\n",
		testHostsMirrorConstant:     testHostsContentConstant,
		testHostsLiveConstant:       testHostsContentConstant,
		testGitConfigLiveConstant:   "[user]\n\tname = Operator\n",
		testForeignHomeFileConstant: "umask 077\n",
	}
	for path, content := range writeFiles {
		require.NoError(testInstance, fileSystem.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(testInstance, afero.WriteFile(fileSystem, path, []byte(content), 0o644))
	}

	mapper, mapperError := pathmap.NewMapper(testHomeDirectoryConstant)
	require.NoError(testInstance, mapperError)

	general := settings.DefaultGeneralConfiguration()
	general.Path = testMirrorRootConstant
	general.DryRun = dryRun
	output := &bytes.Buffer{}

	return &filesFixture{
		fileSystem: fileSystem,
		output:     output,
		builder: files.CommandBuilder{
			GeneralConfigurationProvider: func() settings.GeneralConfiguration { return general },
			ListConfigurationProvider:    func() files.ListConfiguration { return listConfiguration },
			Overrides: dependencies.Overrides{
				FileSystem:   fileSystem,
				Elevator:     refusingElevator{},
				Mapper:       &mapper,
				PathResolver: func(candidatePath string) (string, error) { return candidatePath, nil },
				Input:        &bytes.Buffer{},
				Output:       output,
			},
		},
	}
}

func execute(testInstance *testing.T, command *cobra.Command, arguments ...string) error {
	testInstance.Helper()
	command.SetContext(context.Background())
	command.SetArgs(arguments)
	command.SilenceUsage = true
	command.SilenceErrors = true
	return command.Execute()
}

func TestListCommandText(testInstance *testing.T) {
	testCases := []struct {
		name           string
		arguments      []string
		configuration  files.ListConfiguration
		expectedOutput string
	}{
		{
			name:           "live_paths_by_default",
			expectedOutput: "/etc/hosts\n/home/operator/.bashrc\n",
		},
		{
			name:           "repo_paths",
			arguments:      []string{"-r"},
			expectedOutput: "etc/hosts\nhome/.bashrc\n",
		},
		{
			name:           "show_all_with_repo_paths",
			arguments:      []string{"-a", "-r"},
			expectedOutput: "etc/hosts\nhome/.bashrc\nhome/.vimrc\n",
		},
		{
			name:           "show_all_alone_is_ignored",
			arguments:      []string{"--show-all"},
			expectedOutput: "/etc/hosts\n/home/operator/.bashrc\n",
		},
		{
			name:           "configuration_enables_repo_paths",
			configuration:  files.ListConfiguration{RepoPaths: true, ShowAll: true},
			expectedOutput: "etc/hosts\nhome/.bashrc\nhome/.vimrc\n",
		},
		{
			name:           "flag_disables_configured_repo_paths",
			arguments:      []string{"--repo-paths=no"},
			configuration:  files.ListConfiguration{RepoPaths: true},
			expectedOutput: "/etc/hosts\n/home/operator/.bashrc\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newFilesFixture(testInstance, false, testCase.configuration)
			command, buildError := fixture.builder.BuildList()
			require.NoError(testInstance, buildError)

			require.NoError(testInstance, execute(testInstance, command, testCase.arguments...))
			require.Equal(testInstance, testCase.expectedOutput, fixture.output.String())
		})
	}
}

func TestListCommandStructuredFormats(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		decode    func([]byte, any) error
	}{
		{name: "json", arguments: []string{"--format", "json"}, decode: json.Unmarshal},
		{name: "yaml", arguments: []string{"--format=YAML", "-r"}, decode: yaml.Unmarshal},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newFilesFixture(testInstance, false, files.DefaultListConfiguration())
			command, buildError := fixture.builder.BuildList()
			require.NoError(testInstance, buildError)
			require.NoError(testInstance, execute(testInstance, command, testCase.arguments...))

			var decoded []filesync.TrackedFile
			require.NoError(testInstance, testCase.decode(fixture.output.Bytes(), &decoded))
			require.Equal(testInstance, []filesync.TrackedFile{
				{MirrorPath: "etc/hosts", LivePath: testHostsLiveConstant, LivePresent: true},
				{MirrorPath: "home/.bashrc", LivePath: testShellLiveConstant, LivePresent: true},
			}, decoded)
		})
	}
}

func TestListCommandRejectsUnknownFormats(testInstance *testing.T) {
	fixture := newFilesFixture(testInstance, false, files.ListConfiguration{Format: "xml"})
	command, buildError := fixture.builder.BuildList()
	require.NoError(testInstance, buildError)
	require.ErrorIs(testInstance, execute(testInstance, command), files.ErrUnsupportedFormat)

	flagFixture := newFilesFixture(testInstance, false, files.DefaultListConfiguration())
	flagCommand, flagBuildError := flagFixture.builder.BuildList()
	require.NoError(testInstance, flagBuildError)
	require.ErrorContains(testInstance, execute(testInstance, flagCommand, "--format", "xml"), "invalid value \"xml\"")
}

func TestAddCommand(testInstance *testing.T) {
	testCases := []struct {
		name           string
		dryRun         bool
		target         string
		expectedError  error
		expectedOutput string
		expectMirrored bool
	}{
		{
			name:           "copies_into_mirror",
			target:         testGitConfigLiveConstant,
			expectedOutput: "copying from " + testGitConfigLiveConstant + " to " + testGitConfigMirrorPath + "\n",
			expectMirrored: true,
		},
		{
			name:           "dry_run_only_describes",
			dryRun:         true,
			target:         testGitConfigLiveConstant,
			expectedOutput: "would copy " + testGitConfigLiveConstant + " to " + testGitConfigMirrorPath + "\n",
		},
		{
			name:          "rejects_directories",
			target:        testHomeDirectoryConstant,
			expectedError: filesync.ErrIsDirectory,
		},
		{
			name:          "rejects_irreversible_paths",
			target:        testForeignHomeFileConstant,
			expectedError: pathmap.ErrNotReversible,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newFilesFixture(testInstance, testCase.dryRun, files.DefaultListConfiguration())
			command, buildError := fixture.builder.BuildAdd()
			require.NoError(testInstance, buildError)

			executionError := execute(testInstance, command, testCase.target)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, executionError, testCase.expectedError)
				return
			}
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, testCase.expectedOutput, fixture.output.String())

			mirrored, existsError := afero.Exists(fixture.fileSystem, testGitConfigMirrorPath)
			require.NoError(testInstance, existsError)
			require.Equal(testInstance, testCase.expectMirrored, mirrored)
		})
	}
}

func TestAddCommandRequiresOneArgument(testInstance *testing.T) {
	fixture := newFilesFixture(testInstance, false, files.DefaultListConfiguration())
	command, buildError := fixture.builder.BuildAdd()
	require.NoError(testInstance, buildError)
	require.Error(testInstance, execute(testInstance, command))
}

func TestDiffCommand(testInstance *testing.T) {
	fixture := newFilesFixture(testInstance, false, files.DefaultListConfiguration())
	command, buildError := fixture.builder.BuildDiff()
	require.NoError(testInstance, buildError)
	require.NoError(testInstance, execute(testInstance, command))

	expected := "--- home/.bashrc\n" +
		"+++ /home/operator/.bashrc\n" +
		"-export EDITOR=vi\n" +
		"+export EDITOR=nano\n" +
		"\n" +
		"--- home/.vimrc\n" +
		"+++ /home/operator/.vimrc\n" +
		"live file is missing\n" +
		"\n"
	require.Equal(testInstance, expected, fixture.output.String())

	mirrorContent, readError := afero.ReadFile(fixture.fileSystem, testShellMirrorConstant)
	require.NoError(testInstance, readError)
	require.Equal(testInstance, "export EDITOR=vi\n", string(mirrorContent))
}
