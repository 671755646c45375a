/*
 * doc.go, part of trajimg.
 *
 * Copyright 2025 The trajimg authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package trajimg renders the frames of a molecular dynamics trajectory
// to PNG images and assembles them into a movie.
//
// A Generator optionally smooths the trajectory with a running average,
// opens a number of views of it and statically splits the requested frame
// indices among them, so each view renders its share of the frames in its
// own goroutine. Typical use:
//
//	t, err := traj.Load("system.pdb", "md.dcd")
//	...
//	g, err := trajimg.New(t, "frames", indices, trajimg.WithViews(4))
//	...
//	defer g.Cleanup()
//	if err := g.Run(ctx); err != nil {
//		...
//	}
//	err = g.MakeMovie(ctx, "movie.mp4", 30)
package trajimg
