// Package paths resolves the directories relx reads from and writes to.
//
// The package wraps github.com/adrg/xdg for XDG Base Directory compliance:
// user-level configuration lives in $XDG_CONFIG_HOME/relx on Linux and the
// platform equivalent elsewhere. RELX_CONFIG_DIR overrides the location,
// which is mostly useful in tests and CI images.
package paths
