// Fraudscope - Credit Card Fraud Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fraudscope

// Package logging provides centralized zerolog-based logging for Fraudscope.
//
// A single global logger is configured once at startup from the logging
// section of the configuration:
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("path", path).Msg("Import started")
//	logging.Error().Err(err).Msg("Report failed")
//
// # Run Context
//
// Every analysis run carries a run id in its context. Loggers obtained with
// Ctx include it automatically, which ties import, report and detector lines
// to the summary.json written for the same run:
//
//	ctx = logging.ContextWithNewRunID(ctx)
//	logging.Ctx(ctx).Info().Int("pairs", n).Msg("Detector finished")
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send(), and prefer structured
// fields to formatted messages:
//
//	logging.Info().Int64("rows", n).Msg("imported")  // Correct
//	logging.Info().Msgf("imported %d rows", n)       // Avoid
package logging
