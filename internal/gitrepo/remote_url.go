package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	sshPortDelimiterConstant            = ":"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	pathSeparatorConstant               = "/"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "value is required"
	invalidRemoteURLMessageConstant     = "invalid remote url"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

// RemoteURL represents a structured git remote URL. SCPLike marks the
// scheme-less user@host:path form, which carries no port.
type RemoteURL struct {
	Protocol RemoteProtocol
	User     string
	Host     string
	Port     string
	Path     string
	SCPLike  bool
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
// It accepts https://, http://, ssh:// and scp-like user@host:path forms.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	if strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant) {
		return parseWebRemote(RemoteProtocolHTTPS, strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	}
	if strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant) {
		return parseWebRemote(RemoteProtocolHTTP, strings.TrimPrefix(trimmedRemote, httpProtocolPrefixConstant))
	}
	if strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant) {
		return parseSSHSchemeRemote(strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant))
	}
	if strings.Contains(trimmedRemote, sshUserDelimiterConstant) && strings.Contains(trimmedRemote, sshPathDelimiterConstant) {
		return parseSCPLikeRemote(trimmedRemote)
	}

	return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
}

func parseWebRemote(protocol RemoteProtocol, remainder string) (RemoteURL, error) {
	hostAndPath := strings.SplitN(remainder, pathSeparatorConstant, 2)
	if len(hostAndPath[0]) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remainder, Message: invalidRemoteURLMessageConstant}
	}
	parsedRemote := RemoteURL{Protocol: protocol, Host: hostAndPath[0]}
	if len(hostAndPath) == 2 {
		parsedRemote.Path = hostAndPath[1]
	}
	return parsedRemote, nil
}

// parseSSHSchemeRemote handles the remainder of an ssh:// URL: an authority of
// the form [user@]host[:port] followed by an optional /path. The user part is
// optional, unlike in the scp-like form.
func parseSSHSchemeRemote(remainder string) (RemoteURL, error) {
	parsedRemote := RemoteURL{Protocol: RemoteProtocolSSH}

	authority := remainder
	authorityAndPath := strings.SplitN(remainder, pathSeparatorConstant, 2)
	if len(authorityAndPath) == 2 {
		authority = authorityAndPath[0]
		parsedRemote.Path = authorityAndPath[1]
	}

	if userSplitIndex := strings.Index(authority, sshUserDelimiterConstant); userSplitIndex != -1 {
		parsedRemote.User = authority[:userSplitIndex]
		authority = authority[userSplitIndex+1:]
	}

	hostAndPort := strings.SplitN(authority, sshPortDelimiterConstant, 2)
	parsedRemote.Host = hostAndPort[0]
	if len(hostAndPort) == 2 {
		parsedRemote.Port = hostAndPort[1]
	}

	if len(parsedRemote.Host) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remainder, Message: invalidRemoteURLMessageConstant}
	}
	return parsedRemote, nil
}

func parseSCPLikeRemote(remote string) (RemoteURL, error) {
	userSplitIndex := strings.Index(remote, sshUserDelimiterConstant)
	parsedRemote := RemoteURL{Protocol: RemoteProtocolSSH, User: remote[:userSplitIndex], SCPLike: true}
	hostAndPath := strings.SplitN(remote[userSplitIndex+1:], sshPathDelimiterConstant, 2)
	if len(hostAndPath[0]) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	parsedRemote.Host = hostAndPath[0]
	if len(hostAndPath) == 2 {
		parsedRemote.Path = hostAndPath[1]
	}
	return parsedRemote, nil
}

// JoinRemotePath appends additionalPath to the remote's existing path and
// renders the combined URL in the remote's original form: scp-like remotes
// stay scp-like so git keeps using SSH transport, and ssh:// remotes keep
// their scheme, optional user, and port.
func JoinRemotePath(remote string, additionalPath string) (string, error) {
	parsedRemote, parseError := ParseRemoteURL(remote)
	if parseError != nil {
		return "", parseError
	}
	joinedPath := strings.Trim(parsedRemote.Path, pathSeparatorConstant)
	trimmedAddition := strings.Trim(additionalPath, pathSeparatorConstant)
	if len(trimmedAddition) > 0 {
		if len(joinedPath) > 0 {
			joinedPath = joinedPath + pathSeparatorConstant + trimmedAddition
		} else {
			joinedPath = trimmedAddition
		}
	}

	switch {
	case parsedRemote.SCPLike:
		return fmt.Sprintf("%s%s%s%s%s", parsedRemote.User, sshUserDelimiterConstant, parsedRemote.Host, sshPathDelimiterConstant, joinedPath), nil
	case parsedRemote.Protocol == RemoteProtocolSSH:
		return sshProtocolPrefixConstant + renderAuthority(parsedRemote) + pathSeparatorConstant + joinedPath, nil
	case parsedRemote.Protocol == RemoteProtocolHTTP:
		return fmt.Sprintf("%s%s%s%s", httpProtocolPrefixConstant, parsedRemote.Host, pathSeparatorConstant, joinedPath), nil
	default:
		return fmt.Sprintf("%s%s%s%s", httpsProtocolPrefixConstant, parsedRemote.Host, pathSeparatorConstant, joinedPath), nil
	}
}

func renderAuthority(remoteURL RemoteURL) string {
	authority := remoteURL.Host
	if len(remoteURL.User) > 0 {
		authority = remoteURL.User + sshUserDelimiterConstant + authority
	}
	if len(remoteURL.Port) > 0 {
		authority = authority + sshPortDelimiterConstant + remoteURL.Port
	}
	return authority
}
