// Package charts renders dashboard panels as SVG or PNG with go-chart.
package charts
