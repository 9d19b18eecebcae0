// Package config loads per-command wrapper settings from YAML or CUE.
//
// A config file maps command names to the handle parameter and the open
// options the command's wrapper should use:
//
//	commands:
//	  sum:
//	    param: src
//	    open: {encoding: utf-16le}
//
// Values are checked when the wrapper is built, not when the file is
// loaded, so a config error surfaces with the same codes as a
// programmatic one (INDEX_OUT_OF_RANGE, INVALID_OPTION, ...).
package config
