// Package prompt classifies interactive git output into credential prompt
// events consumed by the process driver.
package prompt
