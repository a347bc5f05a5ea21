//go:build ignore

// build.go - NFHS Dashboard build system
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, dashboard, report, clean, test, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
)

const (
	version    = "1.0.0"
	modulePath = "nfhsdash"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	GOOS    string
	GOARCH  string
}

var (
	rootDir string
	distDir string

	// Executables (key = directory under cmd/, value = output name without extension)
	executables = map[string]string{
		"dashboard":   "nfhs-dashboard",
		"nfhs-report": "nfhs-report",
	}

	info    = color.New(color.FgBlue)
	success = color.New(color.FgGreen)
	failure = color.New(color.FgRed)
	warning = color.New(color.FgYellow)
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")

	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); err != nil {
		panic(fmt.Sprintf("go.mod not found in %s; run the build from the repository root", rootDir))
	}
}

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	goos := flag.String("os", runtime.GOOS, "Target operating system")
	goarch := flag.String("arch", runtime.GOARCH, "Target architecture")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{Verbose: *verbose, GOOS: *goos, GOARCH: *goarch}

	switch *target {
	case "all":
		buildAll(ctx)
	case "dashboard":
		buildExecutable("dashboard", ctx)
	case "report":
		buildExecutable("nfhs-report", ctx)
	case "clean":
		clean()
	case "test":
		runTests(ctx.Verbose)
	case "release":
		buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	bold := color.New(color.FgCyan, color.Bold)
	bold.Println("===========================================")
	bold.Println("       NFHS Dashboard - Build System       ")
	bold.Println("===========================================")
	fmt.Println()
}

func printInfo(msg string)    { fmt.Printf("%s %s\n", info.Sprint("[INFO]"), msg) }
func printSuccess(msg string) { fmt.Printf("%s %s\n", success.Sprint("[SUCCESS]"), msg) }
func printError(msg string)   { fmt.Printf("%s %s\n", failure.Sprint("[ERROR]"), msg) }
func printWarning(msg string) { fmt.Printf("%s %s\n", warning.Sprint("[WARNING]"), msg) }

// Build all executables and copy the sample configuration
func buildAll(ctx *BuildContext) {
	printInfo("Building all components...")

	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create dist directory: %v", err))
		os.Exit(1)
	}

	for name := range executables {
		buildExecutable(name, ctx)
	}

	copyConfigFiles(ctx.Verbose)
	printSuccess("All components built successfully!")
}

// Build a specific executable
func buildExecutable(name string, ctx *BuildContext) {
	exeName, ok := executables[name]
	if !ok {
		printError(fmt.Sprintf("Unknown executable: %s", name))
		os.Exit(1)
	}
	if ctx.GOOS == "windows" {
		exeName += ".exe"
	}

	printInfo(fmt.Sprintf("Building %s (%s/%s)...", name, ctx.GOOS, ctx.GOARCH))

	outputPath := filepath.Join(distDir, exeName)
	ldflags := strings.Join([]string{
		"-s -w",
		fmt.Sprintf("-X %s/pkg/contracts.BuildTime=%s", modulePath, time.Now().UTC().Format(time.RFC3339)),
		fmt.Sprintf("-X %s/pkg/contracts.GitCommit=%s", modulePath, gitOutput("rev-parse", "--short", "HEAD")),
		fmt.Sprintf("-X %s/pkg/contracts.GitBranch=%s", modulePath, gitOutput("rev-parse", "--abbrev-ref", "HEAD")),
	}, " ")

	args := []string{"build"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "-trimpath", "-ldflags", ldflags, "-o", outputPath, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH, "CGO_ENABLED=0")
	cmd.Stderr = os.Stderr
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if fi, err := os.Stat(outputPath); err == nil {
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exeName, float64(fi.Size())/1024/1024))
	}
}

// gitOutput returns the trimmed output of a git command, or "unknown".
func gitOutput(args ...string) string {
	out, err := exec.Command("git", args...).Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func copyConfigFiles(verbose bool) {
	src := filepath.Join(rootDir, "configs", "config.yaml")
	if _, err := os.Stat(src); err != nil {
		printWarning("No configs/config.yaml to copy; the binaries fall back to defaults and NFHS_* variables")
		return
	}
	dest := filepath.Join(distDir, "config.yaml")
	data, err := os.ReadFile(src)
	if err == nil {
		err = os.WriteFile(dest, data, 0644)
	}
	if err != nil {
		printError(fmt.Sprintf("Failed to copy config: %v", err))
		return
	}
	if verbose {
		printInfo(fmt.Sprintf("Copied %s to %s", src, dest))
	}
}

func clean() {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
		return
	}
	printSuccess("Build artifacts cleaned")
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

// Build every executable for each supported platform
func buildRelease(ctx *BuildContext) {
	printInfo("Building release version...")
	clean()

	for _, platform := range [][2]string{{"linux", "amd64"}, {"darwin", "arm64"}, {"windows", "amd64"}} {
		platformCtx := &BuildContext{Verbose: ctx.Verbose, GOOS: platform[0], GOARCH: platform[1]}
		base := distDir
		distDir = filepath.Join(base, platform[0]+"-"+platform[1])
		buildAll(platformCtx)
		distDir = base
	}

	content := fmt.Sprintf("NFHS Dashboard v%s\nBuilt: %s\n", version, time.Now().Format("2006-01-02 15:04:05"))
	if err := os.WriteFile(filepath.Join(distDir, "VERSION.txt"), []byte(content), 0644); err != nil {
		printWarning(fmt.Sprintf("Failed to write VERSION.txt: %v", err))
	}
	printSuccess("Release build completed")
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-os=GOOS] [-arch=GOARCH]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all        Build the dashboard server and nfhs-report (default)")
	fmt.Println("  dashboard  Build the dashboard server only")
	fmt.Println("  report     Build nfhs-report only")
	fmt.Println("  clean      Remove dist/")
	fmt.Println("  test       Run all Go tests with the race detector")
	fmt.Println("  release    Cross-compile every executable into dist/<os>-<arch>")
}
