package params

import (
	"context"
	"fmt"
	"time"

	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// exampleStore returns an in-memory PathStore for the examples.
func exampleStore() *fakeStore {
	return &fakeStore{
		values: map[string]StoreValue{
			"/app/db_host":  {Value: "db.internal", Type: ssmtypes.ParameterTypeString, Version: 1},
			"/app/db_port":  {Value: "5432", Type: ssmtypes.ParameterTypeString, Version: 1},
			"/app/backends": {Value: "a,b,c", Type: ssmtypes.ParameterTypeStringList, Version: 1},
		},
		pathItems: []StoreItem{
			{Name: "/app/db_host", StoreValue: StoreValue{Value: "db.internal", Type: ssmtypes.ParameterTypeString, Version: 1}},
			{Name: "/app/db_port", StoreValue: StoreValue{Value: "5432", Type: ssmtypes.ParameterTypeString, Version: 1}},
		},
	}
}

func ExampleParameter() {
	ctx := context.Background()

	param, err := New("/app/db_host",
		WithStore(exampleStore()),
		WithMaxAge(5*time.Minute))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	value, err := param.Value(ctx)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(value)
	// Output: db.internal
}

func ExampleParameter_stringList() {
	ctx := context.Background()

	param, err := New("/app/backends", WithStore(exampleStore()))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	backends, err := param.StringList(ctx)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(len(backends), backends[0])
	// Output: 3 a
}

func ExampleGroup() {
	ctx := context.Background()

	group, err := NewGroup(
		WithBasePath("/app"),
		WithStore(exampleStore()),
		WithMaxAge(5*time.Minute))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	host, err := group.Parameter("/db_host")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	port, err := group.Parameter("/db_port")
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	// Reading one member refreshes the whole group in a single call.
	hostValue, err := host.Value(ctx)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	portValue, err := port.Value(ctx)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%s:%s\n", hostValue, portValue)
	// Output: db.internal:5432
}

func ExampleGroup_parameters() {
	ctx := context.Background()

	group, err := NewGroup(WithStore(exampleStore()))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	parameters, err := group.Parameters(ctx, "/app")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(len(parameters), group.Len())
	// Output: 2 2
}

func ExampleRefreshOnError() {
	ctx := context.Background()

	store := exampleStore()
	param, err := New("/app/db_host", WithStore(store))
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	attempts := 0
	connect := RefreshOnError(param, func(ctx context.Context, retry bool) error {
		attempts++
		host, err := param.Value(ctx)
		if err != nil {
			return err
		}
		if !retry {
			// Simulate a rejected connection with the stale host.
			return fmt.Errorf("connection refused by %s", host)
		}
		return nil
	})

	if err := connect(ctx); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(attempts)
	// Output: 2
}
