package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/harrisonrobin/taskdeck/pkg/cache"
	"github.com/harrisonrobin/taskdeck/pkg/config"
	"github.com/harrisonrobin/taskdeck/pkg/filter"
	"github.com/harrisonrobin/taskdeck/pkg/gateway"
	"github.com/harrisonrobin/taskdeck/pkg/model"
	"github.com/harrisonrobin/taskdeck/pkg/overdue"
	"github.com/harrisonrobin/taskdeck/pkg/session"
	"github.com/harrisonrobin/taskdeck/pkg/users"
	"github.com/harrisonrobin/taskdeck/pkg/util"
)

func main() {
	// 1. Parse Flags
	setAPI := flag.String("set-api", "", "Set the gateway base URL")
	doLogin := flag.Bool("login", false, "Sign in with -email and -password")
	doRegister := flag.Bool("register", false, "Create an account with -name, -email and -password")
	doLogout := flag.Bool("logout", false, "Sign out and clear the stored session")
	name := flag.String("name", "", "Display name (for -register)")
	email := flag.String("email", "", "Account email")
	password := flag.String("password", "", "Account password")

	doList := flag.Bool("list", false, "List tasks")
	filterName := flag.String("filter", "", "Named filter: all, my-tasks, my-pending, my-completed, my-high-priority")
	statusFlag := flag.Int("status", -1, "Status value (0=pending 1=in-progress 2=completed 3=cancelled)")
	priorityFlag := flag.Int("priority", -1, "Priority value (0=low 1=medium 2=high 3=critical)")
	overdueOnly := flag.Bool("overdue", false, "With -list: show only overdue tasks")

	createTitle := flag.String("create", "", "Create a task with the given title")
	desc := flag.String("desc", "", "Task description (for -create)")
	due := flag.String("due", "", "Due date, YYYY-MM-DD (for -create)")
	assignee := flag.String("assignee", "", "Assignee user id (for -create)")

	doneID := flag.String("done", "", "Mark the given task completed")
	deleteID := flag.String("delete", "", "Delete the given task")
	assignID := flag.String("assign", "", "Task id to reassign; combine with -to or -unassign")
	assignTo := flag.String("to", "", "User id to assign the task to")
	unassign := flag.Bool("unassign", false, "Clear the task's assignment")
	listUsers := flag.Bool("users", false, "List known users")
	flag.Parse()

	// 2. Handle Set API URL
	if *setAPI != "" {
		cfg, err := config.Load()
		if err != nil {
			cfg = &config.Config{}
		}
		cfg.BaseURL = *setAPI
		if err := config.Save(cfg); err != nil {
			log.Fatalf("Error saving config: %v", err)
		}
		fmt.Printf("Gateway base URL set to: %s\n", *setAPI)
		return
	}

	// 3. Wire the client stack
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	stateDir, err := config.StateDir()
	if err != nil {
		log.Fatalf("Error locating state directory: %v", err)
	}

	ctx := context.Background()
	gw := gateway.NewClient(cfg.BaseURL, time.Duration(cfg.TimeoutSeconds)*time.Second)
	sess := session.NewStore(gw, stateDir)
	sess.Restore(ctx)

	// 4. Handle Session Verbs
	if *doLogout {
		sess.Logout()
		fmt.Println("Signed out.")
		return
	}
	if *doRegister {
		if *name == "" || *email == "" || *password == "" {
			log.Fatal("-register needs -name, -email and -password")
		}
		if err := sess.Register(ctx, model.RegisterData{Name: *name, Email: *email, Password: *password}); err != nil {
			log.Fatalf("Registration failed: %v", err)
		}
		fmt.Printf("Registered and signed in as %s\n", sess.User().Name)
		return
	}
	if *doLogin {
		if *email == "" || *password == "" {
			log.Fatal("-login needs -email and -password")
		}
		if err := sess.Login(ctx, model.LoginData{Email: *email, Password: *password}); err != nil {
			log.Fatalf("Login failed: %v", err)
		}
		fmt.Printf("Signed in as %s\n", sess.User().Name)
		return
	}

	if !sess.IsAuthenticated() {
		log.Fatal("Not signed in. Run with -login -email ... -password ...")
	}

	taskCache := cache.New(gw, sess)
	engine := filter.NewEngine(gw, sess, taskCache, stateDir)
	directory := users.NewDirectory(gw, sess)

	// 5. Handle User Directory
	if *listUsers {
		if err := directory.Refresh(ctx); err != nil {
			log.Fatalf("Error loading users: %v", err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
		for _, u := range directory.Users() {
			role := "user"
			if u.Role == model.RoleAdmin {
				role = "admin"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, role)
		}
		w.Flush()
		return
	}

	// 6. Handle Mutations
	switch {
	case *createTitle != "":
		data := model.CreateTaskData{Title: *createTitle, Description: *desc}
		if *priorityFlag >= 0 {
			p := model.Priority(*priorityFlag)
			if !p.Valid() {
				log.Fatalf("Invalid priority value %d", *priorityFlag)
			}
			data.Priority = &p
		}
		if *due != "" {
			dueDate, err := time.Parse("2006-01-02", *due)
			if err != nil {
				log.Fatalf("Invalid due date '%s': %v", *due, err)
			}
			data.DueDate = model.NewTimestamp(dueDate)
		}
		if *assignee != "" {
			data.AssignedToUserID = assignee
		}
		if err := taskCache.Create(ctx, data); err != nil {
			log.Fatalf("Error creating task: %v", err)
		}
		fmt.Println("Task created.")
		return

	case *doneID != "":
		status := model.StatusCompleted
		if err := taskCache.Update(ctx, *doneID, model.UpdateTaskData{Status: &status}); err != nil {
			log.Fatalf("Error completing task: %v", err)
		}
		fmt.Println("Task completed.")
		return

	case *deleteID != "":
		if err := taskCache.Delete(ctx, *deleteID); err != nil {
			log.Fatalf("Error deleting task: %v", err)
		}
		fmt.Println("Task deleted.")
		return

	case *assignID != "":
		var target *string
		if *assignTo != "" {
			target = assignTo
		} else if !*unassign {
			log.Fatal("-assign needs -to <userId> or -unassign")
		}
		if err := taskCache.Assign(ctx, *assignID, target); err != nil {
			log.Fatalf("Error assigning task: %v", err)
		}
		if target == nil {
			fmt.Println("Assignment cleared.")
		} else {
			fmt.Println("Task assigned.")
		}
		return
	}

	if !*doList {
		flag.Usage()
		return
	}

	// 7. List: pick a filter, fall back to the persisted one, then to all
	switch {
	case *filterName != "":
		err = engine.ApplyName(ctx, filter.Name(*filterName))
	case *statusFlag >= 0:
		err = engine.ApplyStatus(ctx, model.Status(*statusFlag))
	case *priorityFlag >= 0:
		err = engine.ApplyPriority(ctx, model.Priority(*priorityFlag))
	default:
		if err = engine.Restore(ctx); err == nil && engine.Active().Name == filter.All {
			err = taskCache.Refresh(ctx)
		}
	}
	if err != nil {
		log.Fatalf("Error loading tasks: %v", err)
	}

	if err := directory.Refresh(ctx); err != nil {
		log.Printf("Warning: could not load user directory: %v", err)
	}

	// 8. Render
	now := time.Now()
	tasks := taskCache.Tasks()
	if *overdueOnly {
		tasks = overdue.Filter(tasks, now)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE\tASSIGNEE")
	for _, t := range tasks {
		dueLabel := util.FormatDateOnly(t.DueDate)
		if overdue.IsOverdue(t.DueDate, t.Status, now) {
			dueLabel = "! " + dueLabel
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, util.StatusLabel(t.Status), util.PriorityLabel(t.Priority),
			dueLabel, directory.DisplayName(t.AssignedToUserID))
	}
	w.Flush()

	if msg := taskCache.LastError(); msg != "" {
		log.Printf("Warning: %s", msg)
	}
}
