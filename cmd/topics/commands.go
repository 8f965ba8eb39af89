package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rpggio/topics/internal/domain/activity"
	"github.com/rpggio/topics/internal/domain/topic"
)

type activeTopicExists struct {
	Error   string `json:"error"`
	TopicID string `json:"topic_id"`
	Title   string `json:"title"`
}

func (c *cli) createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create <root> <title> [type]",
		Aliases: []string{"topic-create"},
		Short:   "Create a topic and make it active",
		Long:    fmt.Sprintf("Create a topic and make it active. type is one of %s (default %s).", typeNames(), topic.TypeOpenDiscussion),
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			topicType := topic.TypeOpenDiscussion
			if len(args) == 3 {
				topicType = topic.Type(args[2])
			}

			res, err := c.open(args[0]).Topics.Create(cmd.Context(), args[1], topicType)
			var active *topic.AlreadyActiveError
			if errors.As(err, &active) {
				if outErr := c.outputJSON(activeTopicExists{
					Error:   "active_topic_exists",
					TopicID: active.TopicID,
					Title:   active.Title,
				}); outErr != nil {
					return outErr
				}
				fmt.Fprintf(c.stderr, "Error: already have an active topic: %s (%s)\n", active.TopicID, active.Title)
				return &reportedError{err: err}
			}
			if err != nil {
				return err
			}
			return c.outputJSON(res)
		},
	}
	// Values such as "-draft" are positional, not flags.
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (c *cli) readCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "read <root>",
		Aliases: []string{"topic-read"},
		Short:   "Show the active topic with its summary",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.open(args[0]).Topics.Read(cmd.Context())
			if err != nil {
				return err
			}
			return c.outputJSON(res)
		},
	}
}

func (c *cli) updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "update <root> <field> <value>",
		Aliases: []string{"topic-update"},
		Short:   "Change one metadata field of the active topic",
		Long:    fmt.Sprintf("Change one metadata field of the active topic. field is one of %v. The value null clears session_id, output_dir and termination_reason.", topic.UpdatableFields),
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.open(args[0]).Topics.Update(cmd.Context(), args[1], args[2])
			if err != nil {
				return err
			}
			return c.outputJSON(res)
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (c *cli) completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "complete <root>",
		Aliases: []string{"topic-complete"},
		Short:   "Mark the active topic completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.open(args[0]).Topics.Complete(cmd.Context())
			if err != nil {
				return err
			}
			return c.outputJSON(res)
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list <root>",
		Aliases: []string{"topic-list"},
		Short:   "List all topics, newest first",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := c.open(args[0]).Reports.List(cmd.Context())
			if err != nil {
				return err
			}
			return c.outputJSON(entries)
		},
	}
}

func (c *cli) autoCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auto-cleanup <root> [minutes]",
		Aliases: []string{"topic-auto-cleanup"},
		Short:   "Abandon the active topic once it has been idle for minutes",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes := c.cfg.Store.CleanupMinutes
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("minutes must be an integer: %s", args[1])
				}
				minutes = n
			}

			res, err := c.open(args[0]).Topics.AutoCleanup(cmd.Context(), minutes)
			if err != nil {
				return err
			}
			return c.outputJSON(res)
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status <root>",
		Aliases: []string{"topic-status"},
		Short:   "Summarize the active topic and count topics by status",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.open(args[0]).Reports.Status(cmd.Context())
			if err != nil {
				return err
			}
			return c.outputJSON(res)
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	var (
		topicID string
		kind    string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "history <root>",
		Short: "Show journaled lifecycle events, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := activity.ListActivityOptions{TopicID: topicID, Limit: limit}
			if kind != "" {
				activityType := activity.ActivityType(kind)
				opts.ActivityType = &activityType
			}
			entries, err := c.open(args[0]).Activity.GetRecentActivity(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return c.outputJSON(entries)
		},
	}
	cmd.Flags().StringVar(&topicID, "topic", "", "only events for this topic id")
	cmd.Flags().StringVar(&kind, "type", "", "only events of this type (topic_created, topic_updated, topic_completed, topic_abandoned, pointer_cleared)")
	cmd.Flags().IntVar(&limit, "limit", activity.DefaultListLimit, "maximum number of events")
	return cmd
}

func typeNames() string {
	names := ""
	for i, t := range topic.ValidTypes {
		if i > 0 {
			names += ", "
		}
		names += string(t)
	}
	return names
}
