package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lineage-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lineage-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lineage-cli/internal/connectors/familysearch"
	"github.com/custodia-labs/lineage-cli/internal/connectors/geonames"
	"github.com/custodia-labs/lineage-cli/internal/core/domain"
	"github.com/custodia-labs/lineage-cli/internal/core/ports/driven"
	"github.com/custodia-labs/lineage-cli/internal/core/ports/driving"
	"github.com/custodia-labs/lineage-cli/internal/core/services"
	"github.com/custodia-labs/lineage-cli/internal/logger"
	"github.com/custodia-labs/lineage-cli/internal/serializers/gedcom"
	"github.com/custodia-labs/lineage-cli/internal/serializers/grampsxml"
)

// recordID matches a FamilySearch person id such as KWQS-BB1.
var recordID = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{3}`)

var exportOpts struct {
	domain.Settings
	LogFile      string
	ShowPassword bool
	SaveSettings bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download a tree and write it as GEDCOM or Gramps XML",
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportOpts.Username, "username", "u", "", "FamilySearch username")
	f.StringVarP(&exportOpts.Password, "password", "p", "", "FamilySearch password")
	f.StringSliceVarP(&exportOpts.Individuals, "individuals", "i", nil, "starting individual ids (default: the authenticated user)")
	f.StringSliceVarP(&exportOpts.Exclude, "exclude", "e", nil, "individual ids to exclude from the tree")
	f.IntVarP(&exportOpts.Ascend, "ascend", "a", 4, "number of generations to ascend")
	f.IntVarP(&exportOpts.Descend, "descend", "d", 0, "number of generations to descend")
	f.IntVar(&exportOpts.Distance, "distance", 0, "maximum distance from the starting individuals; overrides ascend/descend")
	f.BoolVarP(&exportOpts.Marriage, "marriage", "m", false, "add spouses and marriage information")
	f.BoolVarP(&exportOpts.Contributors, "contributors", "r", false, "add contributor lists as notes")
	f.BoolVarP(&exportOpts.Ordinances, "ordinances", "c", false, "add temple ordinances (needs an LDS account)")
	f.StringVarP(&exportOpts.GeonamesUser, "geonames", "g", "", "geonames.org username for place hierarchy lookups")
	f.IntVarP(&exportOpts.TimeoutSec, "timeout", "t", 60, "request timeout in seconds")
	f.BoolVarP(&exportOpts.XML, "xml", "x", false, "write Gramps XML instead of GEDCOM")
	f.StringVarP(&exportOpts.OutFile, "outfile", "o", "", "output file (default: stdout)")
	f.StringVarP(&exportOpts.LogFile, "logfile", "l", "", "mirror log output into a file")
	f.BoolVar(&exportOpts.ShowPassword, "show-password", false, "store the real password when saving settings")
	f.BoolVar(&exportOpts.SaveSettings, "save-settings", false, "save the effective options for the next run")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	store, err := file.NewSettingsStore("", exportOpts.ShowPassword)
	if err != nil {
		return fmt.Errorf("opening settings: %w", err)
	}
	if err := applyStoredSettings(cmd, store); err != nil {
		return err
	}

	for _, id := range append(append([]string{}, exportOpts.Individuals...), exportOpts.Exclude...) {
		if !recordID.MatchString(id) {
			return fmt.Errorf("invalid FamilySearch ID: %s", id)
		}
	}

	if err := promptCredentials(); err != nil {
		return err
	}

	if exportOpts.LogFile != "" {
		logFile, err := os.Create(exportOpts.LogFile)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer logFile.Close()
		logger.SetMirror(logFile)
		defer logger.SetMirror(nil)
	}

	started := time.Now()
	ctx := cmd.Context()

	fmt.Fprintln(os.Stderr, "Login to FamilySearch...")
	source, err := familysearch.New(familysearch.Config{
		Username: exportOpts.Username,
		Password: exportOpts.Password,
		Timeout:  time.Duration(exportOpts.TimeoutSec) * time.Second,
	})
	if err != nil {
		return err
	}
	user, err := source.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if user == nil {
		return fmt.Errorf("login failed: no user record")
	}

	if exportOpts.Ordinances {
		if _, err := source.Ordinances(ctx, user.PersonID); err != nil {
			return fmt.Errorf("ordinances are not available for this account: %w", err)
		}
	}

	geocoder, closeCache, err := buildGeocoder()
	if err != nil {
		return err
	}
	if closeCache != nil {
		defer closeCache()
	}

	registry := services.NewRegistry()
	registry.SetSubmitter(user.DisplayName, user.PreferredLanguage)
	resolver := services.NewPlaceResolver(registry, geocoder)
	builder := services.NewBuilder(registry, source, resolver, exportOpts.Exclude)

	start := exportOpts.Individuals
	if len(start) == 0 {
		start = []string{user.PersonID}
	}
	fmt.Fprintln(os.Stderr, "Downloading starting individuals...")
	if err := builder.AddIndividuals(ctx, start); err != nil {
		return err
	}

	if exportOpts.Distance == 0 {
		if err := builder.Ascend(ctx, exportOpts.Ascend); err != nil {
			return err
		}
		if err := builder.Descend(ctx, exportOpts.Descend); err != nil {
			return err
		}
		if exportOpts.Marriage {
			fmt.Fprintln(os.Stderr, "Downloading spouses and marriage information...")
			if err := builder.AddSpouses(ctx, builder.Known()); err != nil {
				return err
			}
		}
	} else {
		if err := builder.Radius(ctx, exportOpts.Distance, exportOpts.Marriage); err != nil {
			return err
		}
	}

	fmt.Fprintln(os.Stderr, supplementsMessage())
	builder.FetchSupplements(ctx, services.SupplementOptions{
		Ordinances:   exportOpts.Ordinances,
		Contributors: exportOpts.Contributors,
	})

	graph := builder.Snapshot()
	var exporter driving.Exporter
	if exportOpts.XML {
		exporter = grampsxml.New()
	} else {
		exporter = gedcom.New(version)
	}
	if err := writeOutput(exporter, graph); err != nil {
		return err
	}

	persons, families, sources, notes := registry.Counts()
	fmt.Fprintf(os.Stderr,
		"Downloaded %d individuals, %d families, %d sources and %d notes "+
			"in %d seconds with %d HTTP requests.\n",
		persons, families, sources, notes,
		int(time.Since(started).Round(time.Second).Seconds()), source.Requests())

	if exportOpts.SaveSettings {
		if err := store.Save(&exportOpts.Settings); err != nil {
			logger.Warn("Unable to save settings: %v", err)
		}
	}
	return nil
}

// applyStoredSettings fills in flags the user did not pass from the settings
// file. Explicit flags always win.
func applyStoredSettings(cmd *cobra.Command, store driven.SettingsStore) error {
	stored, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	flags := cmd.Flags()
	if !flags.Changed("username") && stored.Username != "" {
		exportOpts.Username = stored.Username
	}
	if !flags.Changed("password") && stored.Password != "" {
		exportOpts.Password = stored.Password
	}
	if !flags.Changed("individuals") && len(stored.Individuals) > 0 {
		exportOpts.Individuals = stored.Individuals
	}
	if !flags.Changed("exclude") && len(stored.Exclude) > 0 {
		exportOpts.Exclude = stored.Exclude
	}
	if !flags.Changed("ascend") && stored.Ascend != 0 {
		exportOpts.Ascend = stored.Ascend
	}
	if !flags.Changed("descend") && stored.Descend != 0 {
		exportOpts.Descend = stored.Descend
	}
	if !flags.Changed("distance") && stored.Distance != 0 {
		exportOpts.Distance = stored.Distance
	}
	if !flags.Changed("marriage") {
		exportOpts.Marriage = exportOpts.Marriage || stored.Marriage
	}
	if !flags.Changed("contributors") {
		exportOpts.Contributors = exportOpts.Contributors || stored.Contributors
	}
	if !flags.Changed("ordinances") {
		exportOpts.Ordinances = exportOpts.Ordinances || stored.Ordinances
	}
	if !flags.Changed("geonames") && stored.GeonamesUser != "" {
		exportOpts.GeonamesUser = stored.GeonamesUser
	}
	if !flags.Changed("timeout") && stored.TimeoutSec != 0 {
		exportOpts.TimeoutSec = stored.TimeoutSec
	}
	if !flags.Changed("xml") {
		exportOpts.XML = exportOpts.XML || stored.XML
	}
	if !flags.Changed("outfile") && stored.OutFile != "" {
		exportOpts.OutFile = stored.OutFile
	}
	return nil
}

func promptCredentials() error {
	if exportOpts.Username == "" {
		fmt.Fprint(os.Stderr, "Enter FamilySearch username: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
		exportOpts.Username = strings.TrimSpace(line)
	}
	if exportOpts.Password == "" {
		fmt.Fprint(os.Stderr, "Enter FamilySearch password: ")
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}
		exportOpts.Password = string(pw)
	}
	return nil
}

// buildGeocoder wires the gazetteer with its on-disk response cache when a
// geonames username is configured. With no username, place resolution falls
// back to synthetic places.
func buildGeocoder() (driven.Geocoder, func(), error) {
	if exportOpts.GeonamesUser == "" {
		return nil, nil, nil
	}
	cache, err := sqlite.NewGeoCache("")
	if err != nil {
		logger.Warn("Geographic cache unavailable: %v", err)
		return geonames.New(exportOpts.GeonamesUser), nil, nil
	}
	if err := cache.Prune(); err != nil {
		logger.Warn("Geographic cache prune failed: %v", err)
	}
	geocoder := geonames.New(exportOpts.GeonamesUser, geonames.WithCache(cache))
	return geocoder, func() { cache.Close() }, nil
}

func supplementsMessage() string {
	msg := "Downloading notes"
	if exportOpts.Ordinances {
		if exportOpts.Contributors {
			msg += ", ordinances"
		} else {
			msg += " and ordinances"
		}
	}
	if exportOpts.Contributors {
		msg += " and contributors"
	}
	return msg + "..."
}

func writeOutput(exporter driving.Exporter, graph *domain.Graph) error {
	var out io.Writer = os.Stdout
	if exportOpts.OutFile != "" {
		f, err := os.Create(exportOpts.OutFile)
		if err != nil {
			return fmt.Errorf("opening output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	return exporter.Export(out, graph)
}
