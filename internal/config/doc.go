// Package config loads the relx release configuration.
//
// # Configuration File
//
// relx looks for .releaserc.yaml, .releaserc.yml, .releaserc.json or
// .releaserc.toml in the working directory, then in $XDG_CONFIG_HOME/relx.
// An explicit file may be passed to [Load]. The YAML form mirrors the
// semantic-release configuration it replaces:
//
//	branches: [main]
//	tagFormat: v${version}
//	plugins:
//	  - - "@semantic-release/commit-analyzer"
//	    - preset: angular
//	      releaseRules:
//	        - breaking: true
//	          release: minor
//	  - "@semantic-release/release-notes-generator"
//	  - "@semantic-release/github"
//	  - - "@semantic-release/exec"
//	    - prepareCmd: bash ./bumpVersion.sh ${nextRelease.version}
//	  - - "@semantic-release/git"
//	    - assets: [[pom.xml]]
//	      message: "release: ${nextRelease.version}"
//
// When no file is found, [DefaultPlugins] supplies exactly that list.
//
// # Environment
//
// Every top-level key can be overridden with a RELX_ prefixed variable, for
// example RELX_DRYRUN=true. The standard CI variable is bound to the ci key.
//
// # Plugin Options
//
// Option maps are kept untyped until the stage that owns them decodes them
// with [DecodeOptions].
package config
