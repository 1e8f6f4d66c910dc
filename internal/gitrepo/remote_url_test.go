package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitdeps/gitdeps/internal/gitrepo"
)

func TestParseRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name          string
		remote        string
		expectedURL   gitrepo.RemoteURL
		expectFailure bool
	}{
		{
			name:        "https_remote",
			remote:      "https://github.com/example/library.git",
			expectedURL: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTPS, Host: "github.com", Path: "example/library.git"},
		},
		{
			name:        "http_remote",
			remote:      "http://git.internal/example/library.git",
			expectedURL: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTP, Host: "git.internal", Path: "example/library.git"},
		},
		{
			name:        "scp_like_remote",
			remote:      "git@github.com:example/library.git",
			expectedURL: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, User: "git", Host: "github.com", Path: "example/library.git", SCPLike: true},
		},
		{
			name:        "ssh_scheme_remote",
			remote:      "ssh://git@github.com/example/library.git",
			expectedURL: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, User: "git", Host: "github.com", Path: "example/library.git"},
		},
		{
			name:        "ssh_scheme_without_user",
			remote:      "ssh://example.com/group/library.git",
			expectedURL: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, Host: "example.com", Path: "group/library.git"},
		},
		{
			name:        "ssh_scheme_with_port",
			remote:      "ssh://git@example.com:2222/group/library.git",
			expectedURL: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, User: "git", Host: "example.com", Port: "2222", Path: "group/library.git"},
		},
		{
			name:        "https_host_only",
			remote:      "https://github.com",
			expectedURL: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTPS, Host: "github.com"},
		},
		{
			name:          "empty_remote",
			remote:        "   ",
			expectFailure: true,
		},
		{
			name:          "bare_path",
			remote:        "example/library.git",
			expectFailure: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			parsedURL, parseError := gitrepo.ParseRemoteURL(testCase.remote)
			if testCase.expectFailure {
				require.Error(subtestInstance, parseError)
				return
			}
			require.NoError(subtestInstance, parseError)
			require.Equal(subtestInstance, testCase.expectedURL, parsedURL)
		})
	}
}

func TestJoinRemotePath(testInstance *testing.T) {
	testCases := []struct {
		name           string
		remote         string
		additionalPath string
		expectedURL    string
	}{
		{
			name:           "https_base_with_path",
			remote:         "https://github.com/example",
			additionalPath: "library.git",
			expectedURL:    "https://github.com/example/library.git",
		},
		{
			name:           "scp_like_base_stays_scp_like",
			remote:         "git@github.com:example",
			additionalPath: "library.git",
			expectedURL:    "git@github.com:example/library.git",
		},
		{
			name:           "redundant_separators_collapsed",
			remote:         "https://git.internal/mirrors/",
			additionalPath: "/vendor/library.git",
			expectedURL:    "https://git.internal/mirrors/vendor/library.git",
		},
		{
			name:           "empty_addition_preserved",
			remote:         "git@github.com:example/library.git",
			additionalPath: "",
			expectedURL:    "git@github.com:example/library.git",
		},
		{
			name:           "ssh_scheme_keeps_scheme",
			remote:         "ssh://git@example.com/group",
			additionalPath: "library.git",
			expectedURL:    "ssh://git@example.com/group/library.git",
		},
		{
			name:           "ssh_scheme_without_user_accepted",
			remote:         "ssh://example.com/group",
			additionalPath: "library.git",
			expectedURL:    "ssh://example.com/group/library.git",
		},
		{
			name:           "ssh_scheme_port_preserved",
			remote:         "ssh://git@example.com:2222/group",
			additionalPath: "library.git",
			expectedURL:    "ssh://git@example.com:2222/group/library.git",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			joinedURL, joinError := gitrepo.JoinRemotePath(testCase.remote, testCase.additionalPath)
			require.NoError(subtestInstance, joinError)
			require.Equal(subtestInstance, testCase.expectedURL, joinedURL)
		})
	}
}
