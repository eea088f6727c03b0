package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alexandremahdhaoui/testenv-vm/internal/store"
	"github.com/alexandremahdhaoui/testenv-vm/internal/util/gracefulshutdown"
	"github.com/alexandremahdhaoui/testenv-vm/internal/util/httputil"
	"github.com/alexandremahdhaoui/testenv-vm/internal/util/logging"
	"github.com/alexandremahdhaoui/testenv-vm/internal/util/ssh"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/directory"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/directory/onecli"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/node"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/probe"
	"github.com/alexandremahdhaoui/testenv-vm/pkg/shell"
	"github.com/go-logr/logr"
)

const Name = "testenv-vm"

// Exit codes
const (
	exitSuccess = 0 // Operation successful
	exitError   = 1 // Command execution error
)

var (
	Version        = "dev" //nolint:gochecknoglobals // set by ldflags
	CommitSHA      = "n/a" //nolint:gochecknoglobals // set by ldflags
	BuildTimestamp = "n/a" //nolint:gochecknoglobals // set by ldflags
)

func main() {
	fs := flag.NewFlagSet(Name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: testenv-vm [command] [options]

Commands:
  create --name <node> [--template <name>] [--wait] [--bootstrap]
                                 Provision a new test node
  get <record-id> [--format json|text]
                                 Show a node record with its live VM state
  list [--format json|text]      List node records
  status <record-id>             Wait out boot and report the node's health
  bootstrap <record-id> [--run-list <list>] [--json-attributes <json>]
                                 Bootstrap configuration management on the node
  exec <record-id> <command...>  Run a command on the node over SSH
  delete <record-id>             Terminate the node and remove its record
  version                        Print version information

Environment Variables:
  TESTENV_VM_CONFIG_PATH    Path to the YAML config file (default: /etc/testenv-vm/config.yaml)
  TESTENV_VM_STORE_DIR      Node record store directory (default: ~/.testenv-vm/nodes)
  TESTENV_VM_SUDO_PASSWORD  Sudo password for privileged subnet scans

Examples:
  # Provision a node from the default template and bootstrap it
  testenv-vm create --name worker --bootstrap

  # Check on it later
  testenv-vm status node-20250101-120000-1a2b3c4d

  # Run a command on it
  testenv-vm exec node-20250101-120000-1a2b3c4d uname -a

  # Tear it down
  testenv-vm delete node-20250101-120000-1a2b3c4d
`)
	}

	if len(os.Args) < 2 {
		fs.Usage()
		os.Exit(exitError)
	}

	command := os.Args[1]

	switch command {
	case "-h", "--help", "help":
		fs.Usage()
		os.Exit(exitSuccess)
	case "version":
		fmt.Printf("%s %s (%s) %s\n", Name, Version, CommitSHA, BuildTimestamp)
		os.Exit(exitSuccess)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}

	log := logging.Setup(cfg.logOptions())

	gs := gracefulshutdown.New(Name)
	ctx := logr.NewContext(gs.Context(), log)

	// The shared metrics registry is scraped while long commands run.
	if metricsServer := setupMetricsServer(cfg); metricsServer != nil {
		go httputil.Serve(map[string]*http.Server{"metrics": metricsServer}, gs)
	} else {
		gs.Ready()
	}

	switch command {
	case "create":
		cmdCreate(ctx, gs, cfg, fs, os.Args[2:])
	case "get":
		cmdGet(ctx, gs, cfg, fs, os.Args[2:])
	case "list":
		cmdList(ctx, gs, cfg, fs, os.Args[2:])
	case "status":
		cmdStatus(ctx, gs, cfg, fs, os.Args[2:])
	case "bootstrap":
		cmdBootstrap(ctx, gs, cfg, fs, os.Args[2:])
	case "exec":
		cmdExec(ctx, gs, cfg, fs, os.Args[2:])
	case "delete":
		cmdDelete(ctx, gs, cfg, fs, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command '%s'\n", command)
		fs.Usage()
		gs.Shutdown(exitError)
	}
}

// cmdCreate provisions a new node and persists its record.
func cmdCreate(
	ctx context.Context,
	gs *gracefulshutdown.GracefulShutdown,
	cfg *Config,
	fs *flag.FlagSet,
	args []string,
) {
	var (
		name         string
		templateName string
		wait         bool
		bootstrap    bool
	)
	fs.StringVar(&name, "name", "", "Node name (required)")
	fs.StringVar(&templateName, "template", "", "Directory template (defaults to templateName from config)")
	fs.BoolVar(&wait, "wait", false, "Wait until the node reports healthy")
	fs.BoolVar(&bootstrap, "bootstrap", false, "Bootstrap configuration management (implies --wait)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		gs.Shutdown(exitError)
	}

	if name == "" {
		fmt.Fprintf(os.Stderr, "Error: 'create' requires --name\n")
		gs.Shutdown(exitError)
	}

	if templateName == "" {
		templateName = cfg.TemplateName
	}
	if templateName == "" {
		fmt.Fprintf(os.Stderr, "Error: no template: pass --template or set templateName in the config\n")
		gs.Shutdown(exitError)
	}

	st, err := newStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open node store: %v\n", err)
		gs.Shutdown(exitError)
	}

	fmt.Fprintf(os.Stderr, "Creating node %s from template %s...\n", name, templateName)

	ctrl, err := node.New(ctx, name, templateName, nodeConfig(ctx, cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create node: %v\n", err)
		gs.Shutdown(exitError)
	}

	vmID, err := ctrl.ID(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read VM id: %v\n", err)
		gs.Shutdown(exitError)
	}

	externalName, err := ctrl.ExternalName(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read external name: %v\n", err)
		gs.Shutdown(exitError)
	}

	record := &store.NodeRecord{
		ID:           store.NewRecordID(),
		Name:         name,
		VMID:         vmID,
		TemplateName: templateName,
		ExternalName: externalName,
		CreatedAt:    time.Now().UTC(),
	}
	if err := st.Save(record); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save node record (VM %d keeps running): %v\n", vmID, err)
		gs.Shutdown(exitError)
	}

	// Print record ID to stdout (for scripting).
	fmt.Println(record.ID)

	if wait || bootstrap {
		healthy, err := ctrl.Healthy(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed while awaiting node health: %v\n", err)
			gs.Shutdown(exitError)
		}
		if !healthy {
			fmt.Fprintf(os.Stderr, "Error: node %s settled unhealthy\n", externalName)
			gs.Shutdown(exitError)
		}
	}

	if bootstrap {
		bootstrapNode(ctx, gs, st, record, ctrl, node.BootstrapOptions{
			ConfigPath:     cfg.Bootstrap.ConfigPath,
			RunList:        cfg.Bootstrap.RunList,
			AttributesJSON: cfg.Bootstrap.AttributesJSON,
		})
	}

	fmt.Fprintf(os.Stderr, "\n✅ Node created: %s\n", record.ID)
	fmt.Fprintf(os.Stderr, "   VM ID:         %d\n", vmID)
	fmt.Fprintf(os.Stderr, "   External name: %s\n", externalName)
	fmt.Fprintf(os.Stderr, "\nNext: check its health with:\n")
	fmt.Fprintf(os.Stderr, "   testenv-vm status %s\n", record.ID)

	gs.Shutdown(exitSuccess)
}

// nodeView is a NodeRecord with the VM's live state attached.
type nodeView struct {
	store.NodeRecord
	State    string `json:"state,omitempty"`
	LCMState string `json:"lcmState,omitempty"`
}

// cmdGet shows a node record together with the live VM state.
func cmdGet(
	ctx context.Context,
	gs *gracefulshutdown.GracefulShutdown,
	cfg *Config,
	fs *flag.FlagSet,
	args []string,
) {
	var format string
	fs.StringVar(&format, "format", "text", "Output format (json|text)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		gs.Shutdown(exitError)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: 'get' requires a record id\n")
		fmt.Fprintf(os.Stderr, "Usage: testenv-vm get <record-id> [--format json|text]\n")
		gs.Shutdown(exitError)
	}

	st, err := newStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open node store: %v\n", err)
		gs.Shutdown(exitError)
	}

	record, err := st.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load node record: %v\n", err)
		gs.Shutdown(exitError)
	}

	view := nodeView{NodeRecord: *record}

	// Live view; a missing VM leaves the state fields empty.
	if vm, err := newDirectory(cfg).FindVMByID(ctx, record.VMID); err == nil {
		view.State = vm.State.String()
		view.LCMState = vm.LCMState.String()
	}

	if format == "json" {
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
			gs.Shutdown(exitError)
		}
		fmt.Println(string(data))
	} else {
		fmt.Printf("\n=== Node: %s ===\n\n", view.ID)
		fmt.Printf("Record ID:     %s\n", view.ID)
		fmt.Printf("Name:          %s\n", view.Name)
		fmt.Printf("VM ID:         %d\n", view.VMID)
		fmt.Printf("Template:      %s\n", view.TemplateName)
		fmt.Printf("External name: %s\n", view.ExternalName)
		fmt.Printf("IP:            %s\n", orPlaceholder(view.IP))
		fmt.Printf("State:         %s\n", orPlaceholder(view.State))
		fmt.Printf("LCM state:     %s\n", orPlaceholder(view.LCMState))
		fmt.Printf("Created at:    %s\n", view.CreatedAt.Format(time.RFC3339))
		fmt.Printf("\n")
	}

	gs.Shutdown(exitSuccess)
}

// cmdList lists all node records.
func cmdList(
	_ context.Context,
	gs *gracefulshutdown.GracefulShutdown,
	cfg *Config,
	fs *flag.FlagSet,
	args []string,
) {
	var format string
	fs.StringVar(&format, "format", "text", "Output format (json|text)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		gs.Shutdown(exitError)
	}

	st, err := newStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open node store: %v\n", err)
		gs.Shutdown(exitError)
	}

	records, err := st.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list node records: %v\n", err)
		gs.Shutdown(exitError)
	}

	if format == "json" {
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
			gs.Shutdown(exitError)
		}
		fmt.Println(string(data))
		gs.Shutdown(exitSuccess)
	}

	if len(records) == 0 {
		fmt.Println("No nodes found")
		gs.Shutdown(exitSuccess)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RECORD ID\tNAME\tVM ID\tIP\tCREATED AT")
	fmt.Fprintln(w, "--\t--\t--\t--\t--")

	for _, record := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			record.ID,
			record.Name,
			record.VMID,
			orPlaceholder(record.IP),
			record.CreatedAt.Format(time.RFC3339),
		)
	}

	w.Flush()
	gs.Shutdown(exitSuccess)
}

// cmdStatus waits out the boot sequence and reports whether the node is
// healthy. The exit code mirrors the result.
func cmdStatus(
	ctx context.Context,
	gs *gracefulshutdown.GracefulShutdown,
	cfg *Config,
	fs *flag.FlagSet,
	args []string,
) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		gs.Shutdown(exitError)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: 'status' requires a record id\n")
		fmt.Fprintf(os.Stderr, "Usage: testenv-vm status <record-id>\n")
		gs.Shutdown(exitError)
	}

	st, err := newStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open node store: %v\n", err)
		gs.Shutdown(exitError)
	}

	record, err := st.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load node record: %v\n", err)
		gs.Shutdown(exitError)
	}

	ctrl, err := node.Attach(ctx, record.Name, record.VMID, nodeConfig(ctx, cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to attach to VM %d: %v\n", record.VMID, err)
		gs.Shutdown(exitError)
	}

	healthy, err := ctrl.Healthy(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to check node health: %v\n", err)
		gs.Shutdown(exitError)
	}

	if healthy {
		fmt.Println("healthy")
		gs.Shutdown(exitSuccess)
	}

	fmt.Println("unhealthy")
	gs.Shutdown(exitError)
}

// cmdBootstrap runs the bootstrap tool against an existing node.
func cmdBootstrap(
	ctx context.Context,
	gs *gracefulshutdown.GracefulShutdown,
	cfg *Config,
	fs *flag.FlagSet,
	args []string,
) {
	var runList, attributesJSON, bootstrapConfig string
	fs.StringVar(&runList, "run-list", "", "Run list handed to the bootstrap tool")
	fs.StringVar(&attributesJSON, "json-attributes", "", "JSON attributes handed to the bootstrap tool")
	fs.StringVar(&bootstrapConfig, "bootstrap-config", "", "Bootstrap tool config file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		gs.Shutdown(exitError)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: 'bootstrap' requires a record id\n")
		fmt.Fprintf(os.Stderr, "Usage: testenv-vm bootstrap <record-id> [--run-list <list>] [--json-attributes <json>]\n")
		gs.Shutdown(exitError)
	}

	st, err := newStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open node store: %v\n", err)
		gs.Shutdown(exitError)
	}

	record, err := st.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load node record: %v\n", err)
		gs.Shutdown(exitError)
	}

	ctrl, err := node.Attach(ctx, record.Name, record.VMID, nodeConfig(ctx, cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to attach to VM %d: %v\n", record.VMID, err)
		gs.Shutdown(exitError)
	}

	opts := node.BootstrapOptions{
		ConfigPath:     cfg.Bootstrap.ConfigPath,
		RunList:        cfg.Bootstrap.RunList,
		AttributesJSON: cfg.Bootstrap.AttributesJSON,
	}
	if bootstrapConfig != "" {
		opts.ConfigPath = bootstrapConfig
	}
	if runList != "" {
		opts.RunList = runList
	}
	if attributesJSON != "" {
		opts.AttributesJSON = attributesJSON
	}

	bootstrapNode(ctx, gs, st, record, ctrl, opts)

	// Print the node's IP to stdout (for scripting).
	if record.IP != "" {
		fmt.Println(record.IP)
	}

	gs.Shutdown(exitSuccess)
}

// cmdExec runs a command on the node over SSH.
func cmdExec(
	ctx context.Context,
	gs *gracefulshutdown.GracefulShutdown,
	cfg *Config,
	fs *flag.FlagSet,
	args []string,
) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		gs.Shutdown(exitError)
	}

	if fs.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "Error: 'exec' requires a record id and a command\n")
		fmt.Fprintf(os.Stderr, "Usage: testenv-vm exec <record-id> <command...>\n")
		gs.Shutdown(exitError)
	}

	st, err := newStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open node store: %v\n", err)
		gs.Shutdown(exitError)
	}

	record, err := st.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load node record: %v\n", err)
		gs.Shutdown(exitError)
	}

	ip := record.IP
	if ip == "" {
		ctrl, err := node.Attach(ctx, record.Name, record.VMID, nodeConfig(ctx, cfg))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to attach to VM %d: %v\n", record.VMID, err)
			gs.Shutdown(exitError)
		}

		ip, err = ctrl.IP(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to discover node IP: %v\n", err)
			gs.Shutdown(exitError)
		}

		record.IP = ip
		if err := st.Save(record); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to update node record: %v\n", err)
		}
	}

	client := ssh.NewClient(ip, cfg.SSH.User, cfg.SSH.Password, "22")

	stdout, stderr, err := client.Run(ctx, fs.Args()[1:]...)
	fmt.Fprint(os.Stdout, stdout)
	fmt.Fprint(os.Stderr, stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: remote command failed: %v\n", err)
		gs.Shutdown(exitError)
	}

	gs.Shutdown(exitSuccess)
}

// cmdDelete terminates the node's VM and removes its record.
func cmdDelete(
	ctx context.Context,
	gs *gracefulshutdown.GracefulShutdown,
	cfg *Config,
	fs *flag.FlagSet,
	args []string,
) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		gs.Shutdown(exitError)
	}

	if fs.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Error: 'delete' requires a record id\n")
		fmt.Fprintf(os.Stderr, "Usage: testenv-vm delete <record-id>\n")
		gs.Shutdown(exitError)
	}

	st, err := newStore(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open node store: %v\n", err)
		gs.Shutdown(exitError)
	}

	record, err := st.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load node record: %v\n", err)
		gs.Shutdown(exitError)
	}

	fmt.Fprintf(os.Stderr, "Deleting node: %s\n", record.ID)

	ctrl, err := node.Attach(ctx, record.Name, record.VMID, nodeConfig(ctx, cfg))
	switch {
	case errors.Is(err, directory.ErrVMNotFound):
		fmt.Fprintf(os.Stderr, "VM %d is already gone, removing the record\n", record.VMID)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: failed to attach to VM %d: %v\n", record.VMID, err)
		gs.Shutdown(exitError)
	default:
		if _, err := ctrl.Delete(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to delete node: %v\n", err)
			fmt.Fprintf(os.Stderr, "The record is kept; retry once the directory recovers\n")
			gs.Shutdown(exitError)
		}
	}

	if err := st.Delete(record.ID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to remove node record: %v\n", err)
		gs.Shutdown(exitError)
	}

	fmt.Fprintf(os.Stderr, "\n✅ Node deleted: %s\n", record.ID)
	gs.Shutdown(exitSuccess)
}

// bootstrapNode runs the bootstrap tool against the node and stores the
// discovered IP on success.
func bootstrapNode(
	ctx context.Context,
	gs *gracefulshutdown.GracefulShutdown,
	st store.Store,
	record *store.NodeRecord,
	ctrl *node.Controller,
	opts node.BootstrapOptions,
) {
	ok, err := ctrl.Bootstrap(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to bootstrap node: %v\n", err)
		gs.Shutdown(exitError)
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: bootstrap process failed on %s\n", record.ExternalName)
		gs.Shutdown(exitError)
	}

	if ip, err := ctrl.IP(ctx); err == nil && ip != record.IP {
		record.IP = ip
		if err := st.Save(record); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to update node record: %v\n", err)
		}
	}

	fmt.Fprintf(os.Stderr, "✅ Node bootstrapped: %s\n", record.ExternalName)
}

// newStore opens the node record store.
func newStore(cfg *Config) (store.Store, error) {
	return store.NewJSONStore(cfg.storeDir())
}

// newDirectory builds the OpenNebula-CLI-backed directory client.
func newDirectory(cfg *Config) directory.Client {
	return onecli.New(&shell.ExecRunner{}, onecli.Options{
		TemplateCommand: cfg.Directory.TemplateCommand,
		VMCommand:       cfg.Directory.VMCommand,
	})
}

// newMapper builds the address mapper chain: lease table first when
// configured, subnet sweep second. Nil when discovery is unconfigured.
func newMapper(ctx context.Context, cfg *Config) probe.AddressMapper {
	var mappers probe.FallbackMapper

	if cfg.Scan.LeaseTablePath != "" {
		mappers = append(mappers, &probe.LeaseMapper{Path: cfg.Scan.LeaseTablePath})
	}

	if cfg.Scan.Subnet != "" {
		mappers = append(mappers, &probe.ScanMapper{
			Runner:       &shell.ExecRunner{},
			Subnet:       cfg.Scan.Subnet,
			SudoPassword: os.Getenv(cfg.Scan.SudoPasswordEnv),
			Attempts:     cfg.Scan.Attempts,
			Interval:     time.Duration(cfg.Scan.IntervalSeconds) * time.Second,
			LineOffset:   cfg.Scan.LineOffset,
			Log:          logr.FromContextOrDiscard(ctx),
		})
	}

	switch len(mappers) {
	case 0:
		return nil
	case 1:
		return mappers[0]
	default:
		return mappers
	}
}

// nodeConfig assembles the controller collaborators from the CLI config.
func nodeConfig(ctx context.Context, cfg *Config) node.Config {
	return node.Config{
		Directory:        newDirectory(cfg),
		Mapper:           newMapper(ctx, cfg),
		Log:              logr.FromContextOrDiscard(ctx),
		BootstrapCommand: cfg.Bootstrap.Command,
		SSHUser:          cfg.SSH.User,
		SSHPassword:      cfg.SSH.Password,
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return "(unknown)"
	}

	return s
}
