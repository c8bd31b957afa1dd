package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kingrain94/tenant-expense-api/internal/api/dto"
)

func main() {
	addr := flag.String("addr", "localhost:10000", "API host:port")
	tenant := flag.String("tenant", "", "Tenant to stream (empty means public)")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/expenses/stream", *addr)
	header := http.Header{}
	if *tenant != "" {
		header.Set("X-Tenant", *tenant)
	}

	fmt.Printf("Connecting to %s as tenant %q...\n", url, *tenant)
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		log.Fatal("Failed to connect:", err)
	}
	defer conn.Close()

	fmt.Println("Connected! Waiting for expense events...")
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}

			var event dto.ExpenseEvent
			if err := json.Unmarshal(message, &event); err != nil {
				fmt.Printf("%s\n", string(message))
				continue
			}
			switch {
			case event.Expense != nil:
				fmt.Printf("[%s] %s #%d %q %.2f\n", event.TenantID, event.Action, event.Expense.ID, event.Expense.Description, event.Expense.Amount)
			default:
				fmt.Printf("[%s] %s %d\n", event.TenantID, event.Action, event.Deleted)
			}
		}
	}()

	select {
	case <-done:
		return
	case <-interrupt:
		fmt.Println("\nDisconnecting...")

		// Send close message
		err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("Write close:", err)
			return
		}

		// Wait for the connection to close
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
