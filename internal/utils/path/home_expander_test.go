package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/gikkon/internal/utils/path"
)

const testHomeDirectoryConstant = "/home/operator"

func TestHomeExpanderExpand(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	testCases := []struct {
		name         string
		input        string
		expectedPath string
	}{
		{name: "tilde_only", input: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_prefix", input: "~/.config/gikkon/config", expectedPath: filepath.Join(testHomeDirectoryConstant, ".config/gikkon/config")},
		{name: "absolute", input: "/srv/mirror", expectedPath: "/srv/mirror"},
		{name: "other_user", input: "~root/mirror", expectedPath: "~root/mirror"},
		{name: "empty", input: "", expectedPath: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.input))
		})
	}
}

func TestHomeExpanderProviderFailureLeavesPathUnchanged(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("no home")
	})

	require.Equal(testInstance, "~/mirror", expander.Expand("~/mirror"))
	_, homeError := expander.HomeDirectory()
	require.Error(testInstance, homeError)
}

func TestHomeExpanderExpandAbsolute(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})

	absolutePath, expandError := expander.ExpandAbsolute(" ~/mirror/../mirror ")
	require.NoError(testInstance, expandError)
	require.Equal(testInstance, filepath.Join(testHomeDirectoryConstant, "mirror"), absolutePath)

	emptyPath, emptyError := expander.ExpandAbsolute("  ")
	require.NoError(testInstance, emptyError)
	require.Empty(testInstance, emptyPath)
}
