package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stemtrack/cartline-backend/internal/client"
	"github.com/stemtrack/cartline-backend/internal/pkg/logger"
	"github.com/stemtrack/cartline-backend/internal/services"
	"github.com/stemtrack/cartline-backend/internal/session"
	"github.com/stemtrack/cartline-backend/internal/types"
	"github.com/stemtrack/cartline-backend/internal/utils"
)

// Headless operator console: starts a cart against a running server, adds
// packages from stdin, and lets the session roll over to the next cart
// automatically when the server seals the current one.
func main() {
	serverURL := flag.String("server", "http://localhost:8080", "cartline server base URL")
	name := flag.String("name", "", "operator name")
	password := flag.String("password", "", "operator password")
	destination := flag.String("destination", "", "cart destination")
	tag := flag.String("tag", "", "cart tag")
	bucketType := flag.String("bucket", "", "bucket type")
	flag.Parse()

	if *name == "" || *password == "" || *destination == "" || *tag == "" || *bucketType == "" {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	api := client.NewAPIClient(*serverURL)
	ctx := context.Background()
	if err := api.Login(ctx, *name, *password); err != nil {
		log.Fatal("Login failed", "error", err)
	}

	sess := session.New(log, api, session.Config{
		PollInterval:   utils.GetEnvAsMillis("POLL_INTERVAL_MS", 2*time.Second, log),
		SuccessorDelay: utils.GetEnvAsMillis("SUCCESSOR_DELAY_MS", 3*time.Second, log),
	}, session.Hooks{
		OnCompleted: func(cart *types.Cart) {
			fmt.Printf("\n*** Cart %d completed (%d packages) ***\n", cart.CartNumber, cart.TotalPackages)
		},
		OnSwitched: func(cart *types.Cart) {
			fmt.Printf("\n=== Active cart: %d (%s / %s / %s) ===\n",
				cart.CartNumber, cart.Destination, cart.Tag, cart.BucketType)
		},
	})
	defer sess.Close()

	if _, err := sess.StartCart(ctx, services.CartSetup{
		Destination: *destination,
		Tag:         *tag,
		BucketType:  *bucketType,
	}); err != nil {
		log.Fatal("Start cart failed", "error", err)
	}

	fmt.Println("Commands: add <variety> <length> <quantity> | status | reset [force] | quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "add":
			if len(fields) < 4 {
				fmt.Println("usage: add <variety> <length> <quantity>")
				continue
			}
			variety := strings.Join(fields[1:len(fields)-2], " ")
			length, err1 := strconv.Atoi(fields[len(fields)-2])
			quantity, err2 := strconv.Atoi(fields[len(fields)-1])
			if err1 != nil || err2 != nil {
				fmt.Println("length and quantity must be integers")
				continue
			}
			cart := sess.Snapshot()
			if cart == nil {
				fmt.Println("no active cart")
				continue
			}
			if quantity > cart.Remaining() {
				fmt.Printf("cart holds at most %d packages, %d remaining\n", cart.MaxPackages, cart.Remaining())
				continue
			}
			if _, err := api.AddPackage(ctx, cart.ID, variety, length, quantity); err != nil {
				fmt.Printf("add failed: %v\n", err)
				continue
			}
			fmt.Printf("added %s %dcm x%d\n", variety, length, quantity)
		case "status":
			cart := sess.Snapshot()
			if cart == nil {
				fmt.Println("no active cart")
				continue
			}
			fmt.Printf("cart %d: %d/%d packages, completed=%v\n",
				cart.CartNumber, cart.TotalPackages, cart.MaxPackages, cart.IsCompleted)
		case "reset":
			force := len(fields) > 1 && fields[1] == "force"
			if err := sess.Reset(force); err != nil {
				fmt.Printf("reset: %v\n", err)
				continue
			}
			fmt.Println("session reset")
			return
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command")
		}
	}
}
