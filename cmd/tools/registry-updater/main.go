// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"freelancer-ranking/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	generateCmd := flag.NewFlagSet("generate", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Generate command flags
	generatePath := generateCmd.String("path", defaultRegistryPath, "Path to registry file")
	status := generateCmd.String("status", "completed", "Implementation Status (planned, in-progress, completed, verified)")

	// Update command flags
	updatePath := updateCmd.String("path", defaultRegistryPath, "Path to registry file")
	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, etc.)")
	value := updateCmd.String("value", "", "New value for the field")

	// Validate command flags
	validatePath := validateCmd.String("path", defaultRegistryPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		generateCmd.Parse(os.Args[2:])
		count, err := generateRegistry(*generatePath, *status, time.Now())
		if err != nil {
			fmt.Printf("Error generating registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d activities to %s\n", count, *generatePath)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateActivity(*updatePath, *idUpdate, *field, *value, time.Now()); err != nil {
			fmt.Printf("Error updating activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated activity %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(*validatePath); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	case "help":
		fallthrough
	default:
		help()
	}
}

// generateRegistry refreshes every ranking activity in the file at path,
// creating it when missing. Hand-edited activities for other task types are kept.
func generateRegistry(path, status string, now time.Time) (int, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return 0, fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}

	activities, err := buildActivities(status)
	if err != nil {
		return 0, err
	}
	for _, activity := range activities {
		if existing, ok := reg.Find(activity.TaskType); ok && existing.ImplementationStatus != "" {
			activity.ImplementationStatus = existing.ImplementationStatus
		}
		reg.Upsert(activity)
	}

	reg.LastUpdated = now.UTC().Format(time.RFC3339)
	return len(activities), reg.Save(path)
}

func updateActivity(path, id, field, value string, now time.Time) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Activities {
		if reg.Activities[i].ID != id {
			continue
		}
		found = true
		switch field {
		case "status":
			reg.Activities[i].ImplementationStatus = value
		case "version":
			reg.Activities[i].Version = value
		case "displayName":
			reg.Activities[i].DisplayName = value
		case "description":
			reg.Activities[i].Description = value
		case "timeout":
			reg.Activities[i].Timeout = value
		case "retries":
			retries, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid retries value: %w", err)
			}
			reg.Activities[i].Retries = retries
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		break
	}

	if !found {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	reg.LastUpdated = now.UTC().Format(time.RFC3339)
	return reg.Save(path)
}

// validateRegistry checks the file's structure and that every ranking
// worker is listed with its current input schema.
func validateRegistry(path string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	activities, err := buildActivities("")
	if err != nil {
		return err
	}
	for _, want := range activities {
		got, ok := reg.Find(want.TaskType)
		if !ok {
			return fmt.Errorf("missing activity for task type %s", want.TaskType)
		}
		if !reflect.DeepEqual(got.InputSchema, want.InputSchema) {
			return fmt.Errorf("input schema for %s is out of date; run generate", want.TaskType)
		}
	}
	return nil
}

func help() {
	fmt.Println("Usage: registry-updater <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  generate   Write the ranking activities to the registry")
	fmt.Println("  update     Update a field of an existing activity")
	fmt.Println("  validate   Validate the registry against the ranking workers")
	fmt.Println("  help       Show this help message")
}
