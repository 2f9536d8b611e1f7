package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gikkon/internal/backend"
	"github.com/temirov/gikkon/internal/settings"
	"github.com/temirov/gikkon/internal/utils"
	pathutils "github.com/temirov/gikkon/internal/utils/path"
)

const (
	testHomeDirectoryConstant = "/home/operator"
	testMirrorPathConstant    = "/home/operator/dotfiles"
)

func newTestExpander() *pathutils.HomeExpander {
	return pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})
}

func TestResolveMirrorPath(testInstance *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(testInstance, fileSystem.MkdirAll(testMirrorPathConstant, 0o755))
	require.NoError(testInstance, afero.WriteFile(fileSystem, "/home/operator/notes.txt", []byte("x"), 0o644))

	testCases := []struct {
		name          string
		path          settings.ExpandedPath
		expectedPath  string
		expectedError error
		expectedText  string
	}{
		{
			name:         "tilde_path",
			path:         "~/dotfiles",
			expectedPath: testMirrorPathConstant,
		},
		{
			name:         "absolute_path",
			path:         testMirrorPathConstant + "/",
			expectedPath: testMirrorPathConstant,
		},
		{
			name:          "blank_path",
			path:          "  ",
			expectedError: settings.ErrMirrorPathRequired,
			expectedText:  "pass --path",
		},
		{
			name:          "missing_directory",
			path:          "/srv/absent",
			expectedError: settings.ErrMirrorPathNotFound,
			expectedText:  `general.path="/srv/absent"`,
		},
		{
			name:          "regular_file",
			path:          "~/notes.txt",
			expectedError: settings.ErrMirrorPathNotFound,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			configuration := settings.GeneralConfiguration{Path: testCase.path}
			resolvedPath, resolveError := configuration.ResolveMirrorPath(fileSystem, newTestExpander())
			if testCase.expectedError != nil {
				require.ErrorIs(subtest, resolveError, testCase.expectedError)
				var configurationError settings.ConfigurationError
				require.ErrorAs(subtest, resolveError, &configurationError)
				require.Equal(subtest, "general.path", configurationError.Key)
				if len(testCase.expectedText) > 0 {
					require.Contains(subtest, resolveError.Error(), testCase.expectedText)
				}
				return
			}
			require.NoError(subtest, resolveError)
			require.Equal(subtest, testCase.expectedPath, resolvedPath)
		})
	}
}

func TestSanitizeRestoresDefaults(testInstance *testing.T) {
	sanitized := settings.GeneralConfiguration{
		Path:          " ~/dotfiles ",
		Remote:        " ",
		Branch:        "trunk",
		CommitMessage: "",
	}.Sanitize()

	require.Equal(testInstance, settings.ExpandedPath("~/dotfiles"), sanitized.Path)
	require.Equal(testInstance, "origin", sanitized.Remote)
	require.Equal(testInstance, "trunk", sanitized.Branch)
	require.Equal(testInstance, backend.KindCLI, sanitized.Backend)
	require.Equal(testInstance, "sudo", sanitized.ElevationCommand)
	require.Equal(testInstance, "something changed", sanitized.CommitMessage)
}

func TestParseBackendKind(testInstance *testing.T) {
	testCases := []struct {
		rawValue      string
		expectedKind  backend.Kind
		expectedError error
	}{
		{rawValue: "", expectedKind: backend.KindCLI},
		{rawValue: "CLI", expectedKind: backend.KindCLI},
		{rawValue: " library ", expectedKind: backend.KindLibrary},
		{rawValue: "svn", expectedError: settings.ErrUnsupportedBackend},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.rawValue, func(subtest *testing.T) {
			kind, parseError := settings.ParseBackendKind(testCase.rawValue)
			if testCase.expectedError != nil {
				require.ErrorIs(subtest, parseError, testCase.expectedError)
				return
			}
			require.NoError(subtest, parseError)
			require.Equal(subtest, testCase.expectedKind, kind)
		})
	}
}

type decodedConfiguration struct {
	General settings.GeneralConfiguration `mapstructure:"general"`
}

func TestDecodeHooksThroughConfigurationLoader(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(configurationDirectory, "config.toml")
	configurationContent := "[general]\npath = \"~/dotfiles\"\nbackend = \"Library\"\n"
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(configurationContent), 0o600))

	loader := utils.NewConfigurationLoader("config", "toml", "GIKKONSETTINGSTEST", []string{configurationDirectory})
	loader.SetDecodeHooks(settings.ExpandedPathDecodeHook(newTestExpander()), settings.BackendKindDecodeHook())

	var configuration decodedConfiguration
	_, loadError := loader.LoadConfiguration(configurationPath, settings.DefaultConfigurationValues(), &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, settings.ExpandedPath(testMirrorPathConstant), configuration.General.Path)
	require.Equal(testInstance, backend.KindLibrary, configuration.General.Backend)
	require.Equal(testInstance, "origin", configuration.General.Remote)
}

func TestDecodeHooksRejectUnknownBackend(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationPath := filepath.Join(configurationDirectory, "config.toml")
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte("[general]\nbackend = \"svn\"\n"), 0o600))

	loader := utils.NewConfigurationLoader("config", "toml", "GIKKONSETTINGSTEST", []string{configurationDirectory})
	loader.SetDecodeHooks(settings.BackendKindDecodeHook())

	var configuration decodedConfiguration
	_, loadError := loader.LoadConfiguration(configurationPath, settings.DefaultConfigurationValues(), &configuration)
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "unsupported version control backend")
}
