// Package git reads the commit the documentation site was built from, so
// published search indexes can be traced back to their source.
package git
