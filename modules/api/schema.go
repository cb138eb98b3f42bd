package api

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/todo-graphql-demo/domain/task"
	"github.com/example/todo-graphql-demo/modules/task"
	"github.com/graphql-go/graphql"
)

// NewSchema builds the GraphQL schema whose resolvers call port.
func NewSchema(port task.TaskPort) (graphql.Schema, error) {
	statusEnum := graphql.NewEnum(graphql.EnumConfig{
		Name: "TaskStatus",
		Values: graphql.EnumValueConfigMap{
			"PENDING":   &graphql.EnumValueConfig{Value: domain.StatusPending},
			"COMPLETED": &graphql.EnumValueConfig{Value: domain.StatusCompleted},
		},
	})

	taskType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Task",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: taskField(func(t *task.TaskResponse) any {
					return t.ID
				}),
			},
			"title": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: taskField(func(t *task.TaskResponse) any {
					return t.Title
				}),
			},
			"description": &graphql.Field{
				Type: graphql.String,
				Resolve: taskField(func(t *task.TaskResponse) any {
					if t.Description == nil {
						return nil
					}
					return *t.Description
				}),
			},
			"status": &graphql.Field{
				Type: graphql.NewNonNull(statusEnum),
				Resolve: taskField(func(t *task.TaskResponse) any {
					return t.Status
				}),
			},
			"createdAt": &graphql.Field{
				Type: graphql.NewNonNull(graphql.DateTime),
				Resolve: taskField(func(t *task.TaskResponse) any {
					return t.CreatedAt
				}),
			},
			"updatedAt": &graphql.Field{
				Type: graphql.DateTime,
				Resolve: taskField(func(t *task.TaskResponse) any {
					if t.UpdatedAt == nil {
						return nil
					}
					return *t.UpdatedAt
				}),
			},
		},
	})

	healthType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Health",
		Fields: graphql.Fields{
			"status":    &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"timestamp": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		},
	})

	createInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateTaskInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	updateStatusInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UpdateTaskStatusInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"id":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
			"status": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(statusEnum)},
		},
	})

	idArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}
	taskList := graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(taskType)))

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"getAllTasks": &graphql.Field{
				Type: taskList,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return port.ListTasks(p.Context, nil)
				},
			},
			"getTasksByStatus": &graphql.Field{
				Type: taskList,
				Args: graphql.FieldConfigArgument{
					"status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(statusEnum)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					status, err := statusArg(p.Args["status"])
					if err != nil {
						return nil, err
					}
					return port.ListTasks(p.Context, &status)
				},
			},
			"getTaskById": &graphql.Field{
				Type: taskType,
				Args: graphql.FieldConfigArgument{"id": idArg},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					t, err := port.GetTask(p.Context, p.Args["id"].(int))
					if err != nil || t == nil {
						return nil, err
					}
					return t, nil
				},
			},
			"health": &graphql.Field{
				Type: graphql.NewNonNull(healthType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return storeHealth(p.Context, port), nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createTask": &graphql.Field{
				Type: graphql.NewNonNull(taskType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createInput)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					title, description := taskInput(p.Args["input"])
					return port.CreateTask(p.Context, &task.CreateTaskRequest{
						Title:       title,
						Description: description,
					})
				},
			},
			"updateTask": &graphql.Field{
				Type: graphql.NewNonNull(taskType),
				Args: graphql.FieldConfigArgument{
					"id":    idArg,
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createInput)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					title, description := taskInput(p.Args["input"])
					return port.UpdateTask(p.Context, &task.UpdateTaskRequest{
						ID:          p.Args["id"].(int),
						Title:       title,
						Description: description,
					})
				},
			},
			"updateTaskStatus": &graphql.Field{
				Type: graphql.NewNonNull(taskType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(updateStatusInput)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					input, _ := p.Args["input"].(map[string]any)
					id, _ := input["id"].(int)
					status, err := statusArg(input["status"])
					if err != nil {
						return nil, err
					}
					return port.UpdateTaskStatus(p.Context, &task.UpdateTaskStatusRequest{
						ID:     id,
						Status: status,
					})
				},
			},
			"deleteTask": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{"id": idArg},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return port.DeleteTask(p.Context, p.Args["id"].(int))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

// taskField adapts a getter on TaskResponse into a field resolver.
func taskField(get func(*task.TaskResponse) any) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		switch t := p.Source.(type) {
		case *task.TaskResponse:
			return get(t), nil
		case task.TaskResponse:
			return get(&t), nil
		default:
			return nil, fmt.Errorf("unexpected task source %T", p.Source)
		}
	}
}

func taskInput(arg any) (string, *string) {
	input, _ := arg.(map[string]any)
	title, _ := input["title"].(string)
	if d, ok := input["description"].(string); ok {
		return title, &d
	}
	return title, nil
}

func statusArg(v any) (domain.Status, error) {
	switch s := v.(type) {
	case domain.Status:
		return s, nil
	case string:
		if status, ok := domain.ParseStatus(s); ok {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid task status %v", v)
}

// storeHealth never fails: an unreachable store is reported as Unhealthy.
func storeHealth(ctx context.Context, port task.TaskPort) HealthResponse {
	resp := HealthResponse{Status: StatusUnhealthy, Timestamp: time.Now().UTC()}
	h, err := port.Health(ctx)
	if err != nil {
		return resp
	}
	if h.Healthy {
		resp.Status = StatusHealthy
	}
	if !h.Timestamp.IsZero() {
		resp.Timestamp = h.Timestamp
	}
	return resp
}
