package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"teentech/internal/lessons"
)

var (
	uploadLessonID  int64
	uploadNewLesson string
)

// lessonsCmd lists the lesson catalog.
var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List available lessons",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := buildServices()
		if err != nil {
			return err
		}
		ls, err := svcs.lessons.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(ls) == 0 {
			fmt.Println("No lessons available.")
			return nil
		}
		for _, l := range ls {
			fmt.Printf("%4d  %s\n", l.ID, l.Title)
		}
		return nil
	},
}

// filesCmd lists the files of one lesson.
var filesCmd = &cobra.Command{
	Use:   "files <lesson-id>",
	Short: "List the files of a lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid lesson id %q", args[0])
		}
		svcs, err := buildServices()
		if err != nil {
			return err
		}
		fs, err := svcs.lessons.Files(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(fs) == 0 {
			fmt.Println("This lesson has no files.")
			return nil
		}
		for _, f := range fs {
			fmt.Printf("%4d  %s\n", f.ID, lessons.SaveName(f.Title))
		}
		return nil
	},
}

// downloadCmd fetches one file into the working directory.
var downloadCmd = &cobra.Command{
	Use:   "download <lesson-id> <file-id>",
	Short: "Download a notebook file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		lessonID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid lesson id %q", args[0])
		}
		fileID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid file id %q", args[1])
		}

		svcs, err := buildServices()
		if err != nil {
			return err
		}

		// The download name comes from the file's title, so resolve it
		// through the lesson's file list first.
		fs, err := svcs.lessons.Files(cmd.Context(), lessonID)
		if err != nil {
			return err
		}
		for _, f := range fs {
			if f.ID != fileID {
				continue
			}
			if err := svcs.lessons.Download(cmd.Context(), f, saveToWorkingDir); err != nil {
				return err
			}
			logger.Info("downloaded file", zap.Int64("file", f.ID))
			fmt.Printf("Saved %s\n", lessons.SaveName(f.Title))
			return nil
		}
		return fmt.Errorf("lesson %d has no file %d", lessonID, fileID)
	},
}

// uploadCmd posts a notebook as new lesson material.
var uploadCmd = &cobra.Command{
	Use:   "upload <title> <notebook.ipynb>",
	Short: "Upload a notebook (teachers only)",
	Long: `Upload a notebook file as lesson material.

The material goes into exactly one lesson: pass --lesson with an existing
lesson id, or --new-lesson with a title to create one.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[1], err)
		}

		svcs, err := buildServices()
		if err != nil {
			return err
		}

		req := lessons.UploadRequest{
			Title:          args[0],
			FileName:       filepath.Base(args[1]),
			Data:           data,
			LessonID:       uploadLessonID,
			NewLessonTitle: uploadNewLesson,
		}
		if err := svcs.lessons.Upload(cmd.Context(), req); err != nil {
			return err
		}
		logger.Info("uploaded material",
			zap.String("title", req.Title),
			zap.Int64("lesson", req.LessonID),
			zap.String("new_lesson", req.NewLessonTitle))
		fmt.Println("Material uploaded.")
		return nil
	},
}

func init() {
	uploadCmd.Flags().Int64Var(&uploadLessonID, "lesson", 0, "existing lesson id to attach the material to")
	uploadCmd.Flags().StringVar(&uploadNewLesson, "new-lesson", "", "title of a new lesson to create")
}
